package domain

import (
	"context"
	"time"
)

// PlatformSettings is the single-row business configuration. It is read on
// every gating decision through a short-lived cache, so edits from the admin
// surface take effect without a restart.
type PlatformSettings struct {
	ClosingTime string `json:"closingTime"` // "HH:MM", 24h
	OpeningTime string `json:"openingTime"`

	// Platform share of the delivery fee, percent. The supplier keeps the rest.
	PlatformDeliveryPct int `json:"platformDeliveryPct"`

	// Flat courier fee charged at checkout; pickup orders pay none.
	DeliveryFee int64 `json:"deliveryFee"`

	// Advisory promotion of stale out_for_delivery orders to delivered.
	AutoDeliverAfter time.Duration `json:"autoDeliverAfter"`

	// Flat customer discount granted by any partner promo code.
	PromoDiscount int64 `json:"promoDiscount"`

	// Per-level commission per qualifying sale and withdrawal minimums, FCFA.
	CommissionStandard int64 `json:"commissionStandard"`
	CommissionActif    int64 `json:"commissionActif"`
	CommissionPremium  int64 `json:"commissionPremium"`

	MinWithdrawalStandard int64 `json:"minWithdrawalStandard"`
	MinWithdrawalActif    int64 `json:"minWithdrawalActif"`
	MinWithdrawalPremium  int64 `json:"minWithdrawalPremium"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// CommissionFor returns the commission for one qualifying sale at the given
// partner level.
func (s PlatformSettings) CommissionFor(level string) int64 {
	switch level {
	case PartnerLevelPremium:
		return s.CommissionPremium
	case PartnerLevelActif:
		return s.CommissionActif
	default:
		return s.CommissionStandard
	}
}

// MinWithdrawalFor returns the minimum withdrawal for the given partner level.
func (s PlatformSettings) MinWithdrawalFor(level string) int64 {
	switch level {
	case PartnerLevelPremium:
		return s.MinWithdrawalPremium
	case PartnerLevelActif:
		return s.MinWithdrawalActif
	default:
		return s.MinWithdrawalStandard
	}
}

// DefaultPlatformSettings are the fallbacks used when the settings row has
// never been written.
func DefaultPlatformSettings() PlatformSettings {
	return PlatformSettings{
		ClosingTime:           "22:00",
		OpeningTime:           "08:00",
		PlatformDeliveryPct:   10,
		DeliveryFee:           1000,
		AutoDeliverAfter:      48 * time.Hour,
		PromoDiscount:         500,
		CommissionStandard:    150,
		CommissionActif:       250,
		CommissionPremium:     300,
		MinWithdrawalStandard: 2000,
		MinWithdrawalActif:    5000,
		MinWithdrawalPremium:  10000,
	}
}

type ConfigRepository interface {
	GetSettings(ctx context.Context) (*PlatformSettings, error)
	UpdateSettings(ctx context.Context, s *PlatformSettings) error
}
