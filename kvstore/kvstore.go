// Package kvstore holds the durable string stores the cart is persisted in.
package kvstore

import (
	"context"
)

// Store is an interface for key/value storage operations.
type Store interface {
	Initialize(ctx context.Context) error

	// Get returns ok=false when the key has never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error

	Ping(ctx context.Context) bool
	Close() error
}
