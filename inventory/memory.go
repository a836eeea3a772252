package inventory

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/pkg/errors"
)

// Memory is an in-memory catalog. It backs the development stub server and
// the tests.
type Memory struct {
	mu       sync.RWMutex
	products []Product
	stock    map[int64]int
}

// NewMemory returns an empty catalog.
func NewMemory() *Memory {
	return &Memory{stock: make(map[int64]int)}
}

// Seed is the document layout read by LoadSeed.
type Seed struct {
	Products []Product `json:"products"`
	Stock    []Stock   `json:"stock"`
}

// LoadSeed builds a catalog from a JSON seed document.
func LoadSeed(r io.Reader) (*Memory, error) {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return nil, errors.Wrap(err, "inventory: decode seed")
	}
	m := NewMemory()
	m.products = append(m.products, seed.Products...)
	for _, s := range seed.Stock {
		m.stock[s.ID] = s.Amount
	}
	return m, nil
}

// Put adds or replaces a product and sets its stock.
func (m *Memory) Put(p Product, stock int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stock[p.ID] = stock
	for i := range m.products {
		if m.products[i].ID == p.ID {
			m.products[i] = p
			return
		}
	}
	m.products = append(m.products, p)
}

// SetStock changes the stock level of a product.
func (m *Memory) SetStock(productID int64, amount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[productID] = amount
}

func (m *Memory) ListProducts(ctx context.Context) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *Memory) GetStock(ctx context.Context, productID int64) (Stock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	amount, ok := m.stock[productID]
	if !ok {
		return Stock{}, errors.Wrapf(ErrNotFound, "stock %d", productID)
	}
	return Stock{ID: productID, Amount: amount}, nil
}

// Product returns a single catalog entry.
func (m *Memory) Product(productID int64) (Product, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.products {
		if p.ID == productID {
			return p, true
		}
	}
	return Product{}, false
}
