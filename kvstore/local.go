package kvstore

import (
	"context"
	"sync"
)

// LocalStore is a simple in-memory store. Values do not survive a restart.
type LocalStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewLocalStore constructor
func NewLocalStore() *LocalStore {
	return &LocalStore{data: make(map[string]string)}
}

// Initialize does nothing in this implementation.
func (l *LocalStore) Initialize(ctx context.Context) error {
	return nil
}

func (l *LocalStore) Get(ctx context.Context, key string) (string, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	v, ok := l.data[key]
	return v, ok, nil
}

func (l *LocalStore) Set(ctx context.Context, key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.data[key] = value
	return nil
}

// Ping is a health check that always returns true.
func (l *LocalStore) Ping(ctx context.Context) bool {
	return true
}

func (l *LocalStore) Close() error {
	return nil
}
