package domain

import (
	"context"
	"time"
)

// Settlement is one supplier declaration that accumulated platform debt has
// been paid. Amount and OrderIDs are snapshotted at declaration time: orders
// delivered after the snapshot are never cleared by this settlement.
type Settlement struct {
	ID             string     `json:"id"`
	SupplierID     string     `json:"supplierId"`
	Amount         int64      `json:"amount"`
	TransactionRef string     `json:"transactionRef"`
	ProofURL       *string    `json:"proofUrl,omitempty"`
	Status         string     `json:"status"` // pending, approved, rejected
	RejectReason   *string    `json:"rejectReason,omitempty"`
	OrderIDs       []string   `json:"orderIds"`
	CreatedAt      time.Time  `json:"createdAt"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty"`
}

type SettlementRepository interface {
	// CreatePending inserts the settlement only if the supplier has no other
	// pending one (conditional write backed by a partial unique index).
	// Returns ErrSettlementPending otherwise.
	CreatePending(ctx context.Context, s *Settlement) error

	GetByID(ctx context.Context, id string) (*Settlement, error)
	HasPending(ctx context.Context, supplierID string) (bool, error)
	ListBySupplier(ctx context.Context, supplierID string) ([]Settlement, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]Settlement, int64, error)

	SetProofURL(ctx context.Context, id, url string) error

	// Resolve moves a pending settlement to approved/rejected. Fails with
	// ErrNotFound if the settlement is no longer pending.
	Resolve(ctx context.Context, id, status string, reason *string, at time.Time) error
}
