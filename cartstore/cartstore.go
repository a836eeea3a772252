// Package cartstore owns the shopper's cart: it validates every mutation
// against the inventory, persists the result and exposes read-only
// snapshots.
package cartstore

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/rocketshoes/cartservice/events"
	"github.com/rocketshoes/cartservice/inventory"
	"github.com/rocketshoes/cartservice/kvstore"
)

// DefaultKey is the storage key the cart is persisted under.
const DefaultKey = "@RocketShoes:cart"

// Store is the authoritative cart. Mutations are serialized per instance:
// the stock check and the write it guards happen under one lock.
type Store struct {
	inventory inventory.Service
	kv        kvstore.Store
	key       string
	log       logrus.FieldLogger
	publisher events.Publisher
	tracer    trace.Tracer
	mutations metric.Int64Counter

	// writeMu is held for the whole of every mutation.
	writeMu sync.Mutex

	mu          sync.RWMutex
	cart        Cart
	initialized bool
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the storage key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) { s.log = log }
}

// WithPublisher sets where committed changes are announced.
func WithPublisher(p events.Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

// WithTracer sets the tracer operations start spans from.
func WithTracer(t trace.Tracer) Option {
	return func(s *Store) { s.tracer = t }
}

// WithMeter sets the meter the mutation counter is created from.
func WithMeter(m metric.Meter) Option {
	return func(s *Store) { s.mutations = newMutationCounter(m) }
}

// New creates a Store. The persisted cart is read by Initialize, or lazily
// by the first mutation.
func New(inv inventory.Service, kv kvstore.Store, opts ...Option) *Store {
	s := &Store{
		inventory: inv,
		kv:        kv,
		key:       DefaultKey,
		log:       logrus.StandardLogger(),
		publisher: events.Discard,
		tracer:    otel.Tracer("cartstore"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.mutations == nil {
		s.mutations = newMutationCounter(otel.Meter("cartstore"))
	}
	return s
}

func newMutationCounter(m metric.Meter) metric.Int64Counter {
	c, err := m.Int64Counter("cart.mutations",
		metric.WithDescription("Cart mutations by operation and outcome"),
	)
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

// Cart returns a snapshot of the last committed cart.
func (s *Store) Cart() Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.clone()
}

// Initialize (re)loads the persisted cart. A missing or malformed value
// yields an empty cart; only a failing storage read is an error.
func (s *Store) Initialize(ctx context.Context) (Cart, error) {
	ctx, span := s.tracer.Start(ctx, "Initialize")
	defer span.End()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.load(ctx, OpInitialize); err != nil {
		span.SetAttributes(attribute.String("error", err.Error()))
		return Cart{}, err
	}
	cart := s.Cart()
	span.SetAttributes(attribute.Int("app.cart.lines", cart.Len()))
	return cart, nil
}

// AddProduct adds one unit of productID, creating the line from the catalog
// entry on first add. It fails with ErrInsufficientStock, leaving the cart
// untouched, when the resulting amount would exceed the current stock.
func (s *Store) AddProduct(ctx context.Context, productID int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "AddProduct")
	defer span.End()
	span.SetAttributes(attribute.Int64("app.product_id", productID))
	defer func() { s.observe(ctx, span, OpAddProduct, productID, err) }()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.ensureInitialized(ctx, OpAddProduct); err != nil {
		return err
	}

	products, err := s.inventory.ListProducts(ctx)
	if err != nil {
		return &Error{Op: OpAddProduct, Kind: ErrCatalogLookupFailed, ProductID: productID, Err: err}
	}
	product, found := findProduct(products, productID)
	if !found {
		return &Error{Op: OpAddProduct, Kind: ErrProductNotFound, ProductID: productID}
	}

	stock, err := s.inventory.GetStock(ctx, productID)
	if err != nil {
		return &Error{Op: OpAddProduct, Kind: ErrStockLookupFailed, ProductID: productID, Err: err}
	}

	next := s.Cart()
	target := 1
	if line, ok := next.Line(productID); ok {
		target = line.Amount + 1
	}
	span.SetAttributes(
		attribute.Int("app.amount", target),
		attribute.Int("app.stock", stock.Amount),
	)
	if target > stock.Amount {
		return &Error{
			Op:        OpAddProduct,
			Kind:      ErrInsufficientStock,
			ProductID: productID,
			Err:       errors.Errorf("requested %d, available %d", target, stock.Amount),
		}
	}

	if !next.setAmount(productID, target) {
		next.append(CartLine{
			ProductID: product.ID,
			Title:     product.Title,
			ImageURL:  product.ImageURL,
			Price:     product.Price,
			Amount:    target,
		})
	}

	if err := s.persist(ctx, next); err != nil {
		return &Error{Op: OpAddProduct, Kind: ErrPersistenceFailed, ProductID: productID, Err: err}
	}
	s.publish(ctx, events.ProductAdded, productID, target, next)
	return nil
}

// RemoveProduct drops the line for productID. Removing a product that is not
// in the cart is a no-op.
func (s *Store) RemoveProduct(ctx context.Context, productID int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "RemoveProduct")
	defer span.End()
	span.SetAttributes(attribute.Int64("app.product_id", productID))
	defer func() { s.observe(ctx, span, OpRemoveProduct, productID, err) }()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.ensureInitialized(ctx, OpRemoveProduct); err != nil {
		return err
	}

	next := s.Cart()
	if !next.remove(productID) {
		s.log.WithField("product_id", productID).Debug("remove: product not in cart")
		return nil
	}

	if err := s.persist(ctx, next); err != nil {
		return &Error{Op: OpRemoveProduct, Kind: ErrPersistenceFailed, ProductID: productID, Err: err}
	}
	s.publish(ctx, events.ProductRemoved, productID, 0, next)
	return nil
}

// UpdateProductAmount sets the amount of an existing line. Amounts below one
// are ignored; use RemoveProduct to drop a line.
func (s *Store) UpdateProductAmount(ctx context.Context, productID int64, amount int) (err error) {
	ctx, span := s.tracer.Start(ctx, "UpdateProductAmount")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("app.product_id", productID),
		attribute.Int("app.amount", amount),
	)

	if amount < 1 {
		s.log.WithField("product_id", productID).WithField("amount", amount).Debug("update: ignoring amount below one")
		return nil
	}
	defer func() { s.observe(ctx, span, OpUpdateProductAmount, productID, err) }()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.ensureInitialized(ctx, OpUpdateProductAmount); err != nil {
		return err
	}

	stock, err := s.inventory.GetStock(ctx, productID)
	if err != nil {
		return &Error{Op: OpUpdateProductAmount, Kind: ErrStockLookupFailed, ProductID: productID, Err: err}
	}
	span.SetAttributes(attribute.Int("app.stock", stock.Amount))
	if amount > stock.Amount {
		return &Error{
			Op:        OpUpdateProductAmount,
			Kind:      ErrInsufficientStock,
			ProductID: productID,
			Err:       errors.Errorf("requested %d, available %d", amount, stock.Amount),
		}
	}

	next := s.Cart()
	if !next.setAmount(productID, amount) {
		return &Error{Op: OpUpdateProductAmount, Kind: ErrProductNotInCart, ProductID: productID}
	}

	if err := s.persist(ctx, next); err != nil {
		return &Error{Op: OpUpdateProductAmount, Kind: ErrPersistenceFailed, ProductID: productID, Err: err}
	}
	s.publish(ctx, events.AmountUpdated, productID, amount, next)
	return nil
}

// ensureInitialized must be called with writeMu held.
func (s *Store) ensureInitialized(ctx context.Context, op Op) error {
	s.mu.RLock()
	done := s.initialized
	s.mu.RUnlock()
	if done {
		return nil
	}
	return s.load(ctx, op)
}

// load must be called with writeMu held.
func (s *Store) load(ctx context.Context, op Op) error {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return &Error{Op: op, Kind: ErrPersistenceFailed, Err: err}
	}

	var cart Cart
	if ok {
		decoded, err := Decode(raw)
		if err != nil {
			s.log.WithError(err).WithField("key", s.key).Warn("discarding malformed persisted cart")
		} else {
			cart = decoded
		}
	}

	s.mu.Lock()
	s.cart = cart
	s.initialized = true
	s.mu.Unlock()
	return nil
}

// persist writes next to storage and, only once that succeeded, makes it
// the committed cart. Must be called with writeMu held.
func (s *Store) persist(ctx context.Context, next Cart) error {
	raw, err := Encode(next)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return err
	}

	s.mu.Lock()
	s.cart = next
	s.mu.Unlock()
	return nil
}

func (s *Store) publish(ctx context.Context, typ events.Type, productID int64, amount int, cart Cart) {
	ev := events.New(typ, productID, amount, cart.Len(), cart.Total())
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.WithError(err).WithField("event_type", typ).Warn("failed to publish cart event")
	}
}

func (s *Store) observe(ctx context.Context, span trace.Span, op Op, productID int64, err error) {
	outcome := "ok"
	if err != nil {
		outcome = Code(err)
		span.SetAttributes(attribute.String("error", err.Error()))

		entry := s.log.WithError(err).WithFields(logrus.Fields{
			"op":         op,
			"product_id": productID,
			"outcome":    outcome,
		})
		if Rejected(err) {
			entry.Info("cart mutation rejected")
		} else {
			entry.Error("cart mutation failed")
		}
	}

	s.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", string(op)),
		attribute.String("outcome", outcome),
	))
}

func findProduct(products []inventory.Product, productID int64) (inventory.Product, bool) {
	for _, p := range products {
		if p.ID == productID {
			return p, true
		}
	}
	return inventory.Product{}, false
}
