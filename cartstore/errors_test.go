package cartstore

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		err      error
		code     string
		rejected bool
		message  string
	}{
		{&Error{Op: OpAddProduct, Kind: ErrInsufficientStock}, "insufficient_stock", true, "Requested quantity is out of stock"},
		{&Error{Op: OpAddProduct, Kind: ErrProductNotFound}, "product_not_found", true, "This product is no longer available"},
		{&Error{Op: OpUpdateProductAmount, Kind: ErrProductNotInCart}, "product_not_in_cart", true, "This product is not in your cart"},
		{&Error{Op: OpAddProduct, Kind: ErrCatalogLookupFailed}, "catalog_lookup_failed", false, "Error adding product"},
		{&Error{Op: OpUpdateProductAmount, Kind: ErrStockLookupFailed}, "stock_lookup_failed", false, "Error changing product amount"},
		{&Error{Op: OpRemoveProduct, Kind: ErrPersistenceFailed}, "persistence_failed", false, "Error removing product"},
		{errors.New("unexpected"), "internal", false, "Something went wrong, please try again"},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			assert.Equal(t, tc.code, Code(tc.err))
			assert.Equal(t, tc.rejected, Rejected(tc.err))
			assert.Equal(t, tc.message, UserMessage(tc.err))
		})
	}

	assert.Empty(t, Code(nil))
	assert.Empty(t, UserMessage(nil))
}

func TestError_WrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := errors.Wrap(&Error{Op: OpAddProduct, Kind: ErrCatalogLookupFailed, ProductID: 42, Err: cause}, "handler")

	assert.True(t, errors.Is(err, ErrCatalogLookupFailed))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrStockLookupFailed))
	assert.Contains(t, err.Error(), "AddProduct product 42: catalog lookup failed: dial tcp")
}
