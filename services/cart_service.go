package services

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rocketshoes/cartservice/cartstore"
)

// CartStore is the part of cartstore.Store the HTTP API uses.
type CartStore interface {
	Cart() cartstore.Cart
	AddProduct(ctx context.Context, productID int64) error
	RemoveProduct(ctx context.Context, productID int64) error
	UpdateProductAmount(ctx context.Context, productID int64, amount int) error
}

// CartServiceServer serves the cart over HTTP.
type CartServiceServer struct {
	store CartStore
}

// NewCartServiceServer creates a server instance with a store injected.
func NewCartServiceServer(store CartStore) *CartServiceServer {
	return &CartServiceServer{store: store}
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CartLineView is one line as shown to the client.
type CartLineView struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
	Amount   int     `json:"amount"`
	Subtotal float64 `json:"subtotal"`
}

// CartView is the cart as shown to the client.
type CartView struct {
	Items []CartLineView `json:"items"`
	Total float64        `json:"total"`
	Size  int            `json:"size"`
}

func newCartView(c cartstore.Cart) CartView {
	lines := c.Lines()
	items := make([]CartLineView, 0, len(lines))
	for _, l := range lines {
		items = append(items, CartLineView{
			ID:       l.ProductID,
			Title:    l.Title,
			Price:    l.Price,
			ImageURL: l.ImageURL,
			Amount:   l.Amount,
			Subtotal: l.Subtotal(),
		})
	}
	return CartView{Items: items, Total: c.Total(), Size: c.Len()}
}

// GetCart handles GET /cart.
func (s *CartServiceServer) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(loggerFrom(r.Context()), w, http.StatusOK, newCartView(s.store.Cart()))
}

// AddProduct handles POST /cart/products/{id}.
func (s *CartServiceServer) AddProduct(w http.ResponseWriter, r *http.Request) {
	log := loggerFrom(r.Context())
	id, ok := productID(log, w, r)
	if !ok {
		return
	}
	if err := s.store.AddProduct(r.Context(), id); err != nil {
		renderError(log, w, err)
		return
	}
	writeJSON(log, w, http.StatusOK, newCartView(s.store.Cart()))
}

// RemoveProduct handles DELETE /cart/products/{id}.
func (s *CartServiceServer) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	log := loggerFrom(r.Context())
	id, ok := productID(log, w, r)
	if !ok {
		return
	}
	if err := s.store.RemoveProduct(r.Context(), id); err != nil {
		renderError(log, w, err)
		return
	}
	writeJSON(log, w, http.StatusOK, newCartView(s.store.Cart()))
}

type updateAmountRequest struct {
	Amount *int `json:"amount"`
}

// UpdateProductAmount handles PUT /cart/products/{id}/amount.
func (s *CartServiceServer) UpdateProductAmount(w http.ResponseWriter, r *http.Request) {
	log := loggerFrom(r.Context())
	id, ok := productID(log, w, r)
	if !ok {
		return
	}

	var req updateAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
		renderBadRequest(log, w, "body must be a JSON object with an integer amount")
		return
	}
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.Int("app.amount", *req.Amount))

	if err := s.store.UpdateProductAmount(r.Context(), id, *req.Amount); err != nil {
		renderError(log, w, err)
		return
	}
	writeJSON(log, w, http.StatusOK, newCartView(s.store.Cart()))
}

func productID(log logrus.FieldLogger, w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		renderBadRequest(log, w, "product id must be a positive integer")
		return 0, false
	}
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.Int64("app.product_id", id))
	return id, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, cartstore.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, cartstore.ErrProductNotFound), errors.Is(err, cartstore.ErrProductNotInCart):
		return http.StatusNotFound
	case errors.Is(err, cartstore.ErrCatalogLookupFailed), errors.Is(err, cartstore.ErrStockLookupFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func renderError(log logrus.FieldLogger, w http.ResponseWriter, err error) {
	status := statusFor(err)
	entry := log.WithError(err).WithField("http.resp.status", status)
	if cartstore.Rejected(err) {
		entry.Info("request rejected")
	} else {
		entry.Error("request failed")
	}
	writeJSON(log, w, status, ErrorResponse{
		Error:   cartstore.Code(err),
		Message: cartstore.UserMessage(err),
	})
}

func renderBadRequest(log logrus.FieldLogger, w http.ResponseWriter, msg string) {
	writeJSON(log, w, http.StatusBadRequest, ErrorResponse{Error: "invalid_input", Message: msg})
}

func writeJSON(log logrus.FieldLogger, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}
