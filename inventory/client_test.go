package inventory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Memory, *Client) {
	t.Helper()
	logger, _ := test.NewNullLogger()

	m := NewMemory()
	m.Put(Product{ID: 1, Title: "Tênis de Caminhada Leve Confortável", Price: 179.9, ImageURL: "https://example.com/1.jpg"}, 3)
	m.Put(Product{ID: 2, Title: "Tênis VR Caminhada Confortável", Price: 139.9, ImageURL: "https://example.com/2.jpg"}, 5)

	srv := httptest.NewServer(NewHandler(m, logger))
	t.Cleanup(srv.Close)
	return m, NewClient(srv.URL+"/", 5*time.Second)
}

func TestClient_ListProducts(t *testing.T) {
	m, c := newTestServer(t)

	got, err := c.ListProducts(context.Background())
	require.NoError(t, err)

	want, _ := m.ListProducts(context.Background())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListProducts mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_GetStock(t *testing.T) {
	_, c := newTestServer(t)

	stock, err := c.GetStock(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, Stock{ID: 2, Amount: 5}, stock)
}

func TestClient_GetStockNotFound(t *testing.T) {
	_, c := newTestServer(t)

	_, err := c.GetStock(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).ListProducts(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "502")
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "not-a-number"`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).GetStock(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "decode"))
}

func TestClient_CancelledContext(t *testing.T) {
	_, c := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListProducts(ctx)
	assert.Error(t, err)
}
