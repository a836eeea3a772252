// Package inventory is the read-only view of the product catalog and its
// stock levels that the cart validates against.
package inventory

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when the catalog has no entry for a product.
var ErrNotFound = errors.New("inventory: not found")

// Product is a catalog entry.
type Product struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
}

// Stock is the number of units currently available for a product.
type Stock struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

// Service looks up catalog entries and stock levels.
type Service interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetStock(ctx context.Context, productID int64) (Stock, error)
}
