package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"soukly-backend/internal/domain"
	"soukly-backend/pkg/utils"
)

// ProofStorage uploads a settlement payment proof and returns its public URL.
// Implemented by pkg/storage (R2).
type ProofStorage interface {
	UploadProof(ctx context.Context, settlementID string, body io.Reader, contentType string) (string, error)
}

// SettlementUsecase is the declare/approve/reject protocol a supplier clears
// platform debt through. The order set contributing to the debt is
// snapshotted at declaration time: orders delivered between declaration and
// approval are never cleared by that settlement.
type SettlementUsecase struct {
	settlementRepo domain.SettlementRepository
	orderRepo      domain.OrderRepository
	debt           *DebtUsecase
	txManager      domain.TransactionManager
	storage        ProofStorage
}

func NewSettlementUsecase(settlementRepo domain.SettlementRepository, orderRepo domain.OrderRepository, debt *DebtUsecase, txManager domain.TransactionManager, storage ProofStorage) *SettlementUsecase {
	return &SettlementUsecase{
		settlementRepo: settlementRepo,
		orderRepo:      orderRepo,
		debt:           debt,
		txManager:      txManager,
		storage:        storage,
	}
}

// Declare snapshots the current debt and opens a pending settlement. The
// persistence layer enforces at most one pending settlement per supplier via
// a conditional insert; a duplicate declaration gets ErrSettlementPending and
// the existing one stands.
func (u *SettlementUsecase) Declare(ctx context.Context, supplierID, transactionRef string) (*domain.Settlement, error) {
	if transactionRef == "" {
		return nil, fmt.Errorf("a transaction reference is required")
	}

	// Always a fresh snapshot, never the cached scalar.
	orderIDs, amount, err := u.debt.Snapshot(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, domain.ErrNoDebt
	}

	settlement := &domain.Settlement{
		ID:             utils.GenerateUUID(),
		SupplierID:     supplierID,
		Amount:         amount,
		TransactionRef: transactionRef,
		Status:         domain.SettlementStatusPending,
		OrderIDs:       orderIDs,
		CreatedAt:      time.Now(),
	}

	if err := u.settlementRepo.CreatePending(ctx, settlement); err != nil {
		return nil, err
	}

	slog.Info("Usecase: Declare settlement", "settlement_id", settlement.ID, "supplier_id", supplierID, "amount", amount, "orders", len(orderIDs))
	return settlement, nil
}

// AttachProof stores the payment screenshot and records its URL.
func (u *SettlementUsecase) AttachProof(ctx context.Context, settlementID, supplierID string, body io.Reader, contentType string) (string, error) {
	settlement, err := u.settlementRepo.GetByID(ctx, settlementID)
	if err != nil {
		return "", err
	}
	if settlement.SupplierID != supplierID {
		return "", domain.ErrNotFound
	}
	if settlement.Status != domain.SettlementStatusPending {
		return "", fmt.Errorf("settlement is already %s", settlement.Status)
	}

	url, err := u.storage.UploadProof(ctx, settlementID, body, contentType)
	if err != nil {
		return "", fmt.Errorf("upload proof: %w", err)
	}
	if err := u.settlementRepo.SetProofURL(ctx, settlementID, url); err != nil {
		return "", err
	}
	return url, nil
}

// Approve marks the settlement approved and every order in its snapshot paid,
// atomically. The follow-up recompute yields zero or only the residual debt
// from orders delivered after the snapshot.
func (u *SettlementUsecase) Approve(ctx context.Context, settlementID string) (*domain.Settlement, error) {
	settlement, err := u.settlementRepo.GetByID(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if settlement.Status != domain.SettlementStatusPending {
		return nil, fmt.Errorf("settlement is already %s", settlement.Status)
	}

	now := time.Now()
	err = u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.settlementRepo.Resolve(txCtx, settlementID, domain.SettlementStatusApproved, nil, now); err != nil {
			return err
		}
		return u.orderRepo.MarkSettled(txCtx, settlement.OrderIDs)
	})
	if err != nil {
		return nil, err
	}

	settlement.Status = domain.SettlementStatusApproved
	settlement.ResolvedAt = &now

	debt, err := u.debt.Recompute(ctx, settlement.SupplierID)
	if err != nil {
		// The clear itself committed; the cached debt will catch up on the
		// next order change.
		slog.Error("Usecase: Approve - post-approval recompute failed", "supplier_id", settlement.SupplierID, "error", err)
	} else {
		slog.Info("Usecase: Approve settlement", "settlement_id", settlementID, "supplier_id", settlement.SupplierID, "residual_debt", debt)
	}
	return settlement, nil
}

// Reject marks the settlement rejected. Debt is unaffected and the supplier
// stays blocked.
func (u *SettlementUsecase) Reject(ctx context.Context, settlementID, reason string) (*domain.Settlement, error) {
	settlement, err := u.settlementRepo.GetByID(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if settlement.Status != domain.SettlementStatusPending {
		return nil, fmt.Errorf("settlement is already %s", settlement.Status)
	}
	if reason == "" {
		return nil, fmt.Errorf("a rejection reason is required")
	}

	now := time.Now()
	if err := u.settlementRepo.Resolve(ctx, settlementID, domain.SettlementStatusRejected, &reason, now); err != nil {
		return nil, err
	}

	settlement.Status = domain.SettlementStatusRejected
	settlement.RejectReason = &reason
	settlement.ResolvedAt = &now
	slog.Info("Usecase: Reject settlement", "settlement_id", settlementID, "reason", reason)
	return settlement, nil
}

func (u *SettlementUsecase) ListBySupplier(ctx context.Context, supplierID string) ([]domain.Settlement, error) {
	return u.settlementRepo.ListBySupplier(ctx, supplierID)
}

func (u *SettlementUsecase) ListByStatus(ctx context.Context, status string, limit, offset int) ([]domain.Settlement, int64, error) {
	return u.settlementRepo.ListByStatus(ctx, status, limit, offset)
}
