package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soukly-backend/internal/domain"
)

func clock(h, m int) time.Time {
	return time.Date(2026, 3, 14, h, m, 0, 0, time.UTC)
}

func TestAfterClosing(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		closing  string
		opening  string
		expected bool
	}{
		{"mid-afternoon open", clock(15, 0), "22:00", "08:00", false},
		{"exactly at closing", clock(22, 0), "22:00", "08:00", true},
		{"just before closing", clock(21, 59), "22:00", "08:00", false},
		{"past midnight still closed", clock(2, 30), "22:00", "08:00", true},
		{"just before opening", clock(7, 59), "22:00", "08:00", true},
		{"exactly at opening", clock(8, 0), "22:00", "08:00", false},
		{"same-day window", clock(13, 0), "12:00", "14:00", true},
		{"outside same-day window", clock(15, 0), "12:00", "14:00", false},
		{"garbage closing time fails open", clock(23, 0), "late", "08:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AfterClosing(tt.now, tt.closing, tt.opening))
		})
	}
}

func newClosingTestEnv(orders ...*domain.Order) (*ClosingUsecase, *fakeSettlementRepo, *DebtUsecase) {
	orderRepo := newFakeOrderRepo(orders...)
	supplierRepo := newFakeSupplierRepo(&domain.Supplier{ID: "s1", Status: domain.SupplierStatusActive})
	configRepo := newFakeConfigRepo()
	debtUC := NewDebtUsecase(orderRepo, supplierRepo, configRepo, newFakeCache())
	settlementRepo := newFakeSettlementRepo()
	return NewClosingUsecase(debtUC, settlementRepo, configRepo), settlementRepo, debtUC
}

func TestStatusOpenWithoutDebtEvenAfterClosing(t *testing.T) {
	uc, _, _ := newClosingTestEnv()

	status, err := uc.Status(context.Background(), "s1", clock(23, 0))
	require.NoError(t, err)
	assert.Equal(t, AccessOpen, status.State)
	assert.Equal(t, int64(0), status.Debt)
}

func TestStatusOpenWithDebtBeforeClosing(t *testing.T) {
	uc, _, _ := newClosingTestEnv(
		debtOrder("o1", "s1", domain.OrderStatusDelivered, 8000, 11000, 1000),
	)

	status, err := uc.Status(context.Background(), "s1", clock(15, 0))
	require.NoError(t, err)
	assert.Equal(t, AccessOpen, status.State)
	assert.Equal(t, int64(3100), status.Debt)
}

func TestStatusBlockedPaymentDueAfterClosing(t *testing.T) {
	uc, _, _ := newClosingTestEnv(
		debtOrder("o1", "s1", domain.OrderStatusDelivered, 8000, 11000, 1000),
	)

	status, err := uc.Status(context.Background(), "s1", clock(23, 0))
	require.NoError(t, err)
	assert.Equal(t, AccessPaymentDue, status.State)
	assert.Equal(t, "22:00", status.ClosingTime)
}

func TestStatusAwaitingApprovalWithPendingSettlement(t *testing.T) {
	uc, settlementRepo, _ := newClosingTestEnv(
		debtOrder("o1", "s1", domain.OrderStatusDelivered, 8000, 11000, 1000),
	)
	require.NoError(t, settlementRepo.CreatePending(context.Background(), &domain.Settlement{
		ID: "st1", SupplierID: "s1", Amount: 3100, Status: domain.SettlementStatusPending,
	}))

	status, err := uc.Status(context.Background(), "s1", clock(23, 0))
	require.NoError(t, err)
	assert.Equal(t, AccessAwaitingApproval, status.State)
}

func TestStatusReopensNextMorning(t *testing.T) {
	uc, _, _ := newClosingTestEnv(
		debtOrder("o1", "s1", domain.OrderStatusDelivered, 8000, 11000, 1000),
	)

	status, err := uc.Status(context.Background(), "s1", clock(8, 30))
	require.NoError(t, err)
	assert.Equal(t, AccessOpen, status.State, "debt alone never blocks during opening hours")
}
