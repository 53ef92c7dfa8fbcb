package domain

import (
	"context"
	"time"
)

type Supplier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Status    string    `json:"status"` // active, suspended, blocked
	Wallet    Wallet    `json:"wallet"`
	CreatedAt time.Time `json:"createdAt"`
}

// Wallet caches the derived debt for display. The order set is the source of
// truth; a stale cache is a display issue, never a double-charge, because the
// settlement workflow always recomputes fresh.
type Wallet struct {
	PlatformDebt   int64      `json:"platformDebt"`
	LastDebtUpdate *time.Time `json:"lastDebtUpdate"`
}

type SupplierRepository interface {
	GetByID(ctx context.Context, id string) (*Supplier, error)
	GetAll(ctx context.Context, limit, offset int) ([]Supplier, int64, error)
	UpdateStatus(ctx context.Context, id, status string) error

	// UpdateWalletDebt overwrites the cached scalar (last-writer-wins).
	UpdateWalletDebt(ctx context.Context, id string, debt int64, at time.Time) error
}
