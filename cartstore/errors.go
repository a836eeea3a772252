package cartstore

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds. Match them with errors.Is.
var (
	// Infrastructure failures.
	ErrCatalogLookupFailed = errors.New("catalog lookup failed")
	ErrStockLookupFailed   = errors.New("stock lookup failed")
	ErrPersistenceFailed   = errors.New("persistence failed")

	// Business rule rejections.
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrProductNotInCart  = errors.New("product not in cart")
)

// Op names a CartStore operation.
type Op string

const (
	OpInitialize          Op = "Initialize"
	OpAddProduct          Op = "AddProduct"
	OpRemoveProduct       Op = "RemoveProduct"
	OpUpdateProductAmount Op = "UpdateProductAmount"
)

// Error is returned by every failed CartStore operation.
type Error struct {
	Op        Op
	Kind      error
	ProductID int64
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("cartstore: %s", e.Op)
	if e.ProductID != 0 {
		msg += fmt.Sprintf(" product %d", e.ProductID)
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Rejected reports whether err is a business rule rejection rather than an
// infrastructure failure.
func Rejected(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrProductNotInCart)
}

// Code is a stable machine readable name for the kind of err.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, ErrProductNotInCart):
		return "product_not_in_cart"
	case errors.Is(err, ErrCatalogLookupFailed):
		return "catalog_lookup_failed"
	case errors.Is(err, ErrStockLookupFailed):
		return "stock_lookup_failed"
	case errors.Is(err, ErrPersistenceFailed):
		return "persistence_failed"
	default:
		return "internal"
	}
}

// UserMessage is the text to show a shopper for err: specific for
// rejections, generic per operation for failures.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientStock):
		return "Requested quantity is out of stock"
	case errors.Is(err, ErrProductNotFound):
		return "This product is no longer available"
	case errors.Is(err, ErrProductNotInCart):
		return "This product is not in your cart"
	}

	var e *Error
	if errors.As(err, &e) {
		switch e.Op {
		case OpAddProduct:
			return "Error adding product"
		case OpRemoveProduct:
			return "Error removing product"
		case OpUpdateProductAmount:
			return "Error changing product amount"
		}
	}
	return "Something went wrong, please try again"
}
