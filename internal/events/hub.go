package events

import (
	"sync"

	"soukly-backend/internal/domain"
)

// OrderChange is the document-change notification the engine reacts to. It is
// published in-process after every local status write and replayed from the
// Postgres NOTIFY channel for writes made by other nodes. Subscribers must be
// idempotent: the same change can arrive twice.
type OrderChange struct {
	OrderID        string `json:"orderId"`
	SupplierID     string `json:"supplierId"`
	PreviousStatus string `json:"previousStatus"`
	Status         string `json:"status"`
}

// Completed reports whether this change is the commission-paying transition.
func (c OrderChange) Completed() bool {
	return c.Status == domain.OrderStatusCompleted
}

// AffectsDebt reports whether the change can move the supplier's debt.
func (c OrderChange) AffectsDebt() bool {
	switch c.Status {
	case domain.OrderStatusDelivered, domain.OrderStatusCompleted:
		return true
	}
	// Leaving a debt-bearing status (settlement clears) also matters.
	switch c.PreviousStatus {
	case domain.OrderStatusDelivered, domain.OrderStatusCompleted:
		return true
	}
	return false
}

type Subscriber func(OrderChange)

// Hub is a minimal subscribe/notify fan-out. Dispatch is asynchronous so a
// slow subscriber never blocks the status-update request path.
type Hub struct {
	mu   sync.RWMutex
	subs []Subscriber
}

func NewHub() *Hub {
	return &Hub{}
}

func (h *Hub) Subscribe(fn Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = append(h.subs, fn)
}

func (h *Hub) Publish(change OrderChange) {
	h.mu.RLock()
	subs := make([]Subscriber, len(h.subs))
	copy(subs, h.subs)
	h.mu.RUnlock()

	for _, fn := range subs {
		go fn(change)
	}
}
