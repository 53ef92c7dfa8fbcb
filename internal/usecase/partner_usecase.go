package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"soukly-backend/internal/domain"
	"soukly-backend/internal/events"
	"soukly-backend/pkg/utils"
)

// Level thresholds on cumulative completed referred sales.
const (
	actifThreshold   = 30
	premiumThreshold = 150
)

// LevelFor maps cumulative sales to the partner tier. Pure and
// threshold-exact: 29 is standard, 30 actif, 149 actif, 150 premium.
func LevelFor(totalSales int) string {
	switch {
	case totalSales >= premiumThreshold:
		return domain.PartnerLevelPremium
	case totalSales >= actifThreshold:
		return domain.PartnerLevelActif
	default:
		return domain.PartnerLevelStandard
	}
}

// ProgressToNextLevel is a display percentage only; no gating decision reads
// it.
func ProgressToNextLevel(totalSales int) int {
	switch {
	case totalSales >= premiumThreshold:
		return 100
	case totalSales >= actifThreshold:
		return (totalSales - actifThreshold) * 100 / (premiumThreshold - actifThreshold)
	default:
		return totalSales * 100 / actifThreshold
	}
}

type PartnerUsecase struct {
	partnerRepo    domain.PartnerRepository
	withdrawalRepo domain.WithdrawalRepository
	orderRepo      domain.OrderRepository
	configRepo     domain.ConfigRepository
	txManager      domain.TransactionManager
}

func NewPartnerUsecase(partnerRepo domain.PartnerRepository, withdrawalRepo domain.WithdrawalRepository, orderRepo domain.OrderRepository, configRepo domain.ConfigRepository, txManager domain.TransactionManager) *PartnerUsecase {
	return &PartnerUsecase{
		partnerRepo:    partnerRepo,
		withdrawalRepo: withdrawalRepo,
		orderRepo:      orderRepo,
		configRepo:     configRepo,
		txManager:      txManager,
	}
}

// PartnerProfile augments the partner row with the display progress value.
type PartnerProfile struct {
	domain.Partner
	Progress      int   `json:"progressToNextLevel"`
	MinWithdrawal int64 `json:"minWithdrawal"`
}

func (u *PartnerUsecase) GetProfile(ctx context.Context, partnerID string) (*PartnerProfile, error) {
	partner, err := u.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	settings, err := u.configRepo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	return &PartnerProfile{
		Partner:       *partner,
		Progress:      ProgressToNextLevel(partner.TotalSales),
		MinWithdrawal: settings.MinWithdrawalFor(partner.Level),
	}, nil
}

// OnOrderChange credits the frozen commission when a referred order reaches
// completed. Delivered never pays anyone. The commission_paid flag on the
// order makes the credit exactly-once even when the same change event arrives
// twice.
func (u *PartnerUsecase) OnOrderChange(change events.OrderChange) {
	if !change.Completed() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := u.CreditCompletedOrder(ctx, change.OrderID); err != nil {
		slog.Error("Usecase: OnOrderChange - commission credit failed", "order_id", change.OrderID, "error", err)
	}
}

func (u *PartnerUsecase) CreditCompletedOrder(ctx context.Context, orderID string) error {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.OrderStatusCompleted || order.Promo == nil || order.Promo.PartnerID == "" {
		return nil
	}

	return u.txManager.Do(ctx, func(txCtx context.Context) error {
		// Conditional flip; false means another event already paid this order.
		flipped, err := u.orderRepo.MarkCommissionPaid(txCtx, orderID)
		if err != nil {
			return err
		}
		if !flipped {
			return nil
		}

		partner, err := u.partnerRepo.CreditSale(txCtx, order.Promo.PartnerID, order.Promo.PartnerCommission)
		if err != nil {
			return err
		}

		// Level is derived from the new totalSales; the stored column is a
		// cache.
		level := LevelFor(partner.TotalSales)
		if level != partner.Level {
			if err := u.partnerRepo.UpdateLevel(txCtx, partner.ID, level); err != nil {
				return err
			}
			slog.Info("Usecase: partner level up", "partner_id", partner.ID, "level", level, "total_sales", partner.TotalSales)
		}

		slog.Info("Usecase: commission credited", "partner_id", partner.ID, "order_id", orderID, "amount", order.Promo.PartnerCommission)
		return nil
	})
}

// RequestWithdrawal validates the level minimum and the balance, then debits
// the wallet and opens the payout request atomically. Validation happens
// first; the debit is the last step and never partially applies.
func (u *PartnerUsecase) RequestWithdrawal(ctx context.Context, partnerID string, amount int64, payoutDetails domain.JSONB) (*domain.Withdrawal, error) {
	partner, err := u.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	settings, err := u.configRepo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	minimum := settings.MinWithdrawalFor(partner.Level)
	if amount < minimum {
		return nil, fmt.Errorf("minimum withdrawal for your level is %d FCFA: %w", minimum, domain.ErrBelowMinimum)
	}
	if amount > partner.WalletBalance {
		return nil, domain.ErrInsufficientBalance
	}

	withdrawal := &domain.Withdrawal{
		ID:            utils.GenerateUUID(),
		PartnerID:     partnerID,
		Amount:        amount,
		PayoutDetails: payoutDetails,
		Status:        domain.WithdrawalStatusPending,
		CreatedAt:     time.Now(),
	}

	err = u.txManager.Do(ctx, func(txCtx context.Context) error {
		// Conditional debit re-checks the balance inside the transaction, so
		// two rapid requests cannot overdraw.
		if err := u.partnerRepo.DebitWallet(txCtx, partnerID, amount); err != nil {
			return err
		}
		return u.withdrawalRepo.Create(txCtx, withdrawal)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Usecase: withdrawal requested", "partner_id", partnerID, "amount", amount)
	return withdrawal, nil
}

// MarkWithdrawalPaid finalizes a payout: the withdrawal flips to paid and the
// partner's lifetime withdrawn total grows.
func (u *PartnerUsecase) MarkWithdrawalPaid(ctx context.Context, withdrawalID string) error {
	withdrawal, err := u.withdrawalRepo.GetByID(ctx, withdrawalID)
	if err != nil {
		return err
	}
	if withdrawal.Status == domain.WithdrawalStatusPaid {
		return nil
	}

	now := time.Now()
	return u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.withdrawalRepo.MarkPaid(txCtx, withdrawalID, now); err != nil {
			return err
		}
		return u.partnerRepo.CreditWithdrawn(txCtx, withdrawal.PartnerID, withdrawal.Amount)
	})
}

func (u *PartnerUsecase) ListWithdrawals(ctx context.Context, partnerID string) ([]domain.Withdrawal, error) {
	return u.withdrawalRepo.ListByPartner(ctx, partnerID)
}

func (u *PartnerUsecase) ListWithdrawalsByStatus(ctx context.Context, status string, limit, offset int) ([]domain.Withdrawal, int64, error) {
	return u.withdrawalRepo.ListByStatus(ctx, status, limit, offset)
}
