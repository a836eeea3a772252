package cartstore

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCart(t *testing.T) {
	c, err := NewCart(
		CartLine{ProductID: 1, Price: 10, Amount: 2},
		CartLine{ProductID: 2, Price: 2.5, Amount: 4},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.InDelta(t, 30.0, c.Total(), 1e-9)

	_, err = NewCart(CartLine{ProductID: 1, Amount: 1}, CartLine{ProductID: 1, Amount: 1})
	assert.Error(t, err)

	_, err = NewCart(CartLine{ProductID: 1, Amount: 0})
	assert.Error(t, err)
}

func TestCart_ZeroValue(t *testing.T) {
	var c Cart
	assert.Zero(t, c.Len())
	assert.Empty(t, c.Lines())
	_, ok := c.Line(1)
	assert.False(t, ok)
	assert.True(t, c.Equal(Cart{}))
}

func TestCart_RemoveReindexes(t *testing.T) {
	c, err := NewCart(
		CartLine{ProductID: 1, Amount: 1},
		CartLine{ProductID: 2, Amount: 1},
		CartLine{ProductID: 3, Amount: 1},
	)
	require.NoError(t, err)

	assert.True(t, c.remove(1))
	assert.False(t, c.remove(1))
	assert.True(t, c.setAmount(3, 7))

	want := []CartLine{{ProductID: 2, Amount: 1}, {ProductID: 3, Amount: 7}}
	if diff := cmp.Diff(want, c.Lines()); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	line, ok := c.Line(3)
	require.True(t, ok)
	assert.Equal(t, 7, line.Amount)
}

func TestCart_CloneIsIndependent(t *testing.T) {
	c, err := NewCart(CartLine{ProductID: 1, Amount: 1}, CartLine{ProductID: 2, Amount: 1})
	require.NoError(t, err)

	d := c.clone()
	d.remove(1)
	d.setAmount(2, 5)

	assert.Equal(t, 2, c.Len())
	l, _ := c.Line(2)
	assert.Equal(t, 1, l.Amount)
	assert.False(t, c.Equal(d))
}

func TestCartLine_Subtotal(t *testing.T) {
	assert.InDelta(t, 359.8, CartLine{Price: 179.9, Amount: 2}.Subtotal(), 1e-9)
}
