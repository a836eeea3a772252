// Package events announces committed cart changes to other systems.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Type names the mutation that produced an event.
type Type string

const (
	ProductAdded   Type = "product_added"
	ProductRemoved Type = "product_removed"
	AmountUpdated  Type = "amount_updated"
)

// CartEvent describes one committed mutation and the cart it left behind.
type CartEvent struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	ProductID int64     `json:"productId"`
	Amount    int       `json:"amount"`
	Lines     int       `json:"lines"`
	Total     float64   `json:"total"`
	At        time.Time `json:"at"`
}

// New stamps an event with a fresh id and the current time.
func New(typ Type, productID int64, amount, lines int, total float64) CartEvent {
	return CartEvent{
		ID:        uuid.NewString(),
		Type:      typ,
		ProductID: productID,
		Amount:    amount,
		Lines:     lines,
		Total:     total,
		At:        time.Now().UTC(),
	}
}

// Publisher delivers cart events.
type Publisher interface {
	Publish(ctx context.Context, ev CartEvent) error
	Close() error
}

// Discard drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(context.Context, CartEvent) error { return nil }
func (discard) Close() error                             { return nil }

// LogPublisher writes events to a logger.
type LogPublisher struct {
	log logrus.FieldLogger
}

func NewLogPublisher(log logrus.FieldLogger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, ev CartEvent) error {
	p.log.WithFields(logrus.Fields{
		"event_id":   ev.ID,
		"event_type": ev.Type,
		"product_id": ev.ProductID,
		"amount":     ev.Amount,
		"lines":      ev.Lines,
		"total":      ev.Total,
	}).Info("cart changed")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
