package domain

import (
	"context"
	"time"
)

type OrderFilter struct {
	Page       int
	Limit      int
	Status     string
	SupplierID string
	Search     string
}

// --- Order Entities ---

// All amounts are whole FCFA (the currency has no sub-unit), stored as int64.

type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type Delivery struct {
	Method string `json:"method"`
	Fee    int64  `json:"fee"`
}

type Payment struct {
	Method string `json:"method"`
}

// Promo is frozen at order creation. Discount and commission are never
// recalculated afterward, even if the partner's level changes later.
type Promo struct {
	Code              string `json:"code"`
	PartnerID         string `json:"partnerId"`
	DiscountAmount    int64  `json:"discountAmount"`
	PartnerCommission int64  `json:"partnerCommission"`
}

type Order struct {
	ID         string      `json:"id"`
	Code       string      `json:"code"` // human-readable reference, e.g. CMD-4F2K9A
	SupplierID string      `json:"supplierId"`
	Customer   Customer    `json:"customer"`
	Items      []OrderItem `json:"items"`
	Delivery   Delivery    `json:"delivery"`
	Payment    Payment     `json:"payment"`
	Promo      *Promo      `json:"promo,omitempty"`

	Status       string  `json:"status"`
	CancelReason *string `json:"cancelReason,omitempty"`

	// Supplier-facing debt accounting flag, independent of Status.
	SettlementStatus string `json:"settlementStatus"`

	// CommissionPaid guards the partner payout: flipped exactly once when the
	// order completes.
	CommissionPaid bool `json:"commissionPaid"`

	SupplierShare int64 `json:"supplierShare"`
	PlatformShare int64 `json:"platformShare"`
	FinalTotal    int64 `json:"finalTotal"`

	CreatedAt       time.Time `json:"createdAt"`
	StatusChangedAt time.Time `json:"statusChangedAt"`
}

type OrderItem struct {
	ID        string `json:"id"`
	OrderID   string `json:"orderId"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	// Prices at time of purchase. UnitSupplierCost is the supplier's declared
	// cost and is never edited post-creation.
	UnitSellingPrice int64 `json:"unitSellingPrice"`
	UnitSupplierCost int64 `json:"unitSupplierCost"`
}

// Margin is the per-line platform margin.
func (i OrderItem) Margin() int64 {
	return (i.UnitSellingPrice - i.UnitSupplierCost) * int64(i.Quantity)
}

type OrderHistory struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"orderId"`
	PreviousStatus *string   `json:"previousStatus"`
	NewStatus      string    `json:"newStatus"`
	Reason         *string   `json:"reason"`
	CreatedBy      *string   `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

// DebtOrder is one order's contribution to a supplier's platform debt:
// per-item margin plus the platform's delivery-fee share.
type DebtOrder struct {
	OrderID string `json:"orderId"`
	Amount  int64  `json:"amount"`
}

// --- Interfaces ---

type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)

	// Sequential visibility: the oldest order in the active status set is the
	// supplier's single actionable order. Returns ErrNotFound when the queue
	// is empty.
	GetActiveOrder(ctx context.Context, supplierID string) (*Order, error)
	CountActive(ctx context.Context, supplierID string) (int, error)

	// UpdateStatus is a compare-and-swap: the write only lands if the row
	// still holds the status the caller validated against. A moved status
	// returns ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id, from, to string, reason *string, at time.Time) error

	// Debt scan. Ground truth for DebtLedger and for settlement snapshots.
	ListDebtOrders(ctx context.Context, supplierID string, platformDeliveryPct int) ([]DebtOrder, error)
	MarkSettled(ctx context.Context, orderIDs []string) error

	// MarkCommissionPaid flips the commission guard. Returns false when the
	// flag was already set, so a redundant completion event pays nothing.
	MarkCommissionPaid(ctx context.Context, orderID string) (bool, error)

	// Advisory auto-promotion: orders stuck in out_for_delivery since before
	// the cutoff.
	ListStaleOutForDelivery(ctx context.Context, before time.Time) ([]Order, error)

	CreateHistory(ctx context.Context, history *OrderHistory) error
	GetHistory(ctx context.Context, orderID string) ([]OrderHistory, error)
}
