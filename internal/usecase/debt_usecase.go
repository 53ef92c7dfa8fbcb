package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"soukly-backend/internal/domain"
	"soukly-backend/internal/events"
	"soukly-backend/pkg/cache"
)

const debtCacheTTL = 5 * time.Minute

// DebtUsecase derives a supplier's outstanding platform debt from the order
// set. Recompute is idempotent and runs redundantly off order-change events;
// the persisted wallet scalar and the cache are display conveniences, the
// order set is always ground truth.
type DebtUsecase struct {
	orderRepo    domain.OrderRepository
	supplierRepo domain.SupplierRepository
	configRepo   domain.ConfigRepository
	cache        cache.CacheService
}

func NewDebtUsecase(orderRepo domain.OrderRepository, supplierRepo domain.SupplierRepository, configRepo domain.ConfigRepository, cache cache.CacheService) *DebtUsecase {
	return &DebtUsecase{
		orderRepo:    orderRepo,
		supplierRepo: supplierRepo,
		configRepo:   configRepo,
		cache:        cache,
	}
}

func debtKey(supplierID string) string {
	return "debt:" + supplierID
}

// Recompute scans delivered/completed unsettled orders and returns the fresh
// debt, persisting it on the wallet (last-writer-wins). On a failed read the
// cached value is preserved, never zeroed (fail closed).
func (u *DebtUsecase) Recompute(ctx context.Context, supplierID string) (int64, error) {
	contributions, err := u.listContributions(ctx, supplierID)
	if err != nil {
		slog.Error("Usecase: Recompute - order scan failed, keeping cached debt", "supplier_id", supplierID, "error", err)
		return 0, fmt.Errorf("%w: %v", domain.ErrStaleDebtRead, err)
	}

	var debt int64
	for _, c := range contributions {
		debt += c.Amount
	}

	if err := u.supplierRepo.UpdateWalletDebt(ctx, supplierID, debt, time.Now()); err != nil {
		// The cache write below still serves reads; the wallet row catches up
		// on the next recompute.
		slog.Error("Usecase: Recompute - wallet cache write failed", "supplier_id", supplierID, "error", err)
	}
	u.cache.Set(debtKey(supplierID), debt, debtCacheTTL)
	return debt, nil
}

// Snapshot returns the exact set of orders currently contributing to the debt
// together with the total. The settlement workflow clears this set and no
// other order.
func (u *DebtUsecase) Snapshot(ctx context.Context, supplierID string) ([]string, int64, error) {
	contributions, err := u.listContributions(ctx, supplierID)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrStaleDebtRead, err)
	}

	ids := make([]string, 0, len(contributions))
	var total int64
	for _, c := range contributions {
		ids = append(ids, c.OrderID)
		total += c.Amount
	}
	return ids, total, nil
}

// GetDebt serves the display value: cache first, then a fresh recompute, then
// the last persisted wallet value when even the recompute read fails.
func (u *DebtUsecase) GetDebt(ctx context.Context, supplierID string) (int64, error) {
	if v, ok := u.cache.Get(debtKey(supplierID)); ok {
		if debt, ok := v.(int64); ok {
			return debt, nil
		}
	}

	debt, err := u.Recompute(ctx, supplierID)
	if err == nil {
		return debt, nil
	}

	supplier, supErr := u.supplierRepo.GetByID(ctx, supplierID)
	if supErr != nil {
		return 0, err
	}
	slog.Warn("Usecase: GetDebt - serving stale wallet value", "supplier_id", supplierID)
	return supplier.Wallet.PlatformDebt, nil
}

func (u *DebtUsecase) listContributions(ctx context.Context, supplierID string) ([]domain.DebtOrder, error) {
	settings, err := u.configRepo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	return u.orderRepo.ListDebtOrders(ctx, supplierID, settings.PlatformDeliveryPct)
}

// OnOrderChange is the hub subscriber: any change that can move the debt
// triggers a recompute. Safe to run redundantly and out of order.
func (u *DebtUsecase) OnOrderChange(change events.OrderChange) {
	if !change.AffectsDebt() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := u.Recompute(ctx, change.SupplierID); err != nil {
		slog.Error("Usecase: OnOrderChange - recompute failed", "supplier_id", change.SupplierID, "error", err)
	}
}

// Invalidate drops the cached display value so the next read recomputes.
func (u *DebtUsecase) Invalidate(supplierID string) {
	u.cache.Delete(debtKey(supplierID))
}
