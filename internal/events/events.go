// Package events publishes order lifecycle notifications after commit.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/diewo77/go-orders/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type is also used as the routing key.
type Type string

const (
	OrderCreated Type = "order.created"
	OrderUpdated Type = "order.updated"
	OrderDeleted Type = "order.deleted"
)

// Event is the JSON envelope sent to subscribers.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       Type            `json:"type"`
	OrderID    uint            `json:"order_id"`
	ClientID   uint            `json:"client_id"`
	Status     string          `json:"status"`
	TotalValue decimal.Decimal `json:"total_value"`
	ItemCount  int             `json:"item_count"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewOrderEvent builds an event describing o.
func NewOrderEvent(t Type, o *models.Order) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		OrderID:    o.ID,
		ClientID:   o.ClientID,
		Status:     o.Status,
		TotalValue: o.TotalValue,
		ItemCount:  len(o.Items),
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// MemoryPublisher keeps published events in memory.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
	// Err, when set, is returned by Publish instead of recording.
	Err error
}

func (m *MemoryPublisher) Publish(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.events = append(m.events, e)
	return nil
}

// Events returns a copy of the recorded events.
func (m *MemoryPublisher) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
