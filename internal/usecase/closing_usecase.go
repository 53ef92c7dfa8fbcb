package usecase

import (
	"context"
	"fmt"
	"time"

	"soukly-backend/internal/domain"
)

// Access states returned by the closing gate. A pending settlement is a
// distinct blocked sub-state: the supplier sees a waiting screen, not the
// payment form.
const (
	AccessOpen             = "open"
	AccessPaymentDue       = "blocked_payment_due"
	AccessAwaitingApproval = "blocked_awaiting_approval"
)

type AccessStatus struct {
	State       string `json:"state"`
	Debt        int64  `json:"debt"`
	ClosingTime string `json:"closingTime"`
}

// ClosingUsecase composes the debt ledger, the settlement workflow and the
// configured closing time into the nightly open/blocked decision.
type ClosingUsecase struct {
	debt           *DebtUsecase
	settlementRepo domain.SettlementRepository
	configRepo     domain.ConfigRepository
}

func NewClosingUsecase(debt *DebtUsecase, settlementRepo domain.SettlementRepository, configRepo domain.ConfigRepository) *ClosingUsecase {
	return &ClosingUsecase{
		debt:           debt,
		settlementRepo: settlementRepo,
		configRepo:     configRepo,
	}
}

// Status evaluates the gate for a supplier at time now. Zero debt means
// unconditionally open regardless of the hour.
func (u *ClosingUsecase) Status(ctx context.Context, supplierID string, now time.Time) (*AccessStatus, error) {
	settings, err := u.configRepo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	debt, err := u.debt.GetDebt(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	status := &AccessStatus{State: AccessOpen, Debt: debt, ClosingTime: settings.ClosingTime}
	if debt <= 0 {
		return status, nil
	}
	if !AfterClosing(now, settings.ClosingTime, settings.OpeningTime) {
		return status, nil
	}

	pending, err := u.settlementRepo.HasPending(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if pending {
		status.State = AccessAwaitingApproval
	} else {
		status.State = AccessPaymentDue
	}
	return status, nil
}

func (u *ClosingUsecase) IsBlocked(ctx context.Context, supplierID string) (bool, error) {
	status, err := u.Status(ctx, supplierID, time.Now())
	if err != nil {
		return false, err
	}
	return status.State != AccessOpen, nil
}

// AfterClosing reports whether clock time now falls in the closed window
// [closing, opening). The window crosses midnight when closing > opening
// (e.g. 22:00 -> 08:00).
func AfterClosing(now time.Time, closing, opening string) bool {
	c, okC := parseClock(closing)
	o, okO := parseClock(opening)
	if !okC || !okO {
		return false
	}

	minutes := now.Hour()*60 + now.Minute()
	if c > o {
		return minutes >= c || minutes < o
	}
	return minutes >= c && minutes < o
}

func parseClock(s string) (int, bool) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
