package domain

import (
	"context"
	"time"
)

// Partner is a referral/ambassador account. Level is a pure function of
// TotalSales; the stored column is a cache refreshed on every credited sale.
type Partner struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	PromoCode      string    `json:"promoCode"` // unique
	Level          string    `json:"level"`     // standard, actif, premium
	TotalSales     int       `json:"totalSales"`
	WalletBalance  int64     `json:"walletBalance"`
	TotalEarnings  int64     `json:"totalEarnings"`
	TotalWithdrawn int64     `json:"totalWithdrawn"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Withdrawal struct {
	ID            string     `json:"id"`
	PartnerID     string     `json:"partnerId"`
	Amount        int64      `json:"amount"`
	PayoutDetails JSONB      `json:"payoutDetails"`
	Status        string     `json:"status"` // pending, paid
	CreatedAt     time.Time  `json:"createdAt"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
}

type PartnerRepository interface {
	GetByID(ctx context.Context, id string) (*Partner, error)
	GetByPromoCode(ctx context.Context, code string) (*Partner, error)

	// CreditSale applies one completed referred sale: wallet and earnings grow
	// by the frozen commission, totalSales by one. Returns the updated row.
	CreditSale(ctx context.Context, partnerID string, commission int64) (*Partner, error)
	UpdateLevel(ctx context.Context, partnerID, level string) error

	// DebitWallet subtracts only when the balance covers the amount
	// (conditional write). Returns ErrInsufficientBalance otherwise.
	DebitWallet(ctx context.Context, partnerID string, amount int64) error
	CreditWithdrawn(ctx context.Context, partnerID string, amount int64) error
}

type WithdrawalRepository interface {
	Create(ctx context.Context, w *Withdrawal) error
	GetByID(ctx context.Context, id string) (*Withdrawal, error)
	ListByPartner(ctx context.Context, partnerID string) ([]Withdrawal, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]Withdrawal, int64, error)
	MarkPaid(ctx context.Context, id string, at time.Time) error
}
