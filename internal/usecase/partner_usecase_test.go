package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soukly-backend/internal/domain"
)

func TestLevelForThresholds(t *testing.T) {
	tests := []struct {
		sales int
		level string
	}{
		{0, domain.PartnerLevelStandard},
		{29, domain.PartnerLevelStandard},
		{30, domain.PartnerLevelActif},
		{149, domain.PartnerLevelActif},
		{150, domain.PartnerLevelPremium},
		{1000, domain.PartnerLevelPremium},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, LevelFor(tt.sales), "totalSales=%d", tt.sales)
	}
}

func TestProgressToNextLevel(t *testing.T) {
	assert.Equal(t, 0, ProgressToNextLevel(0))
	assert.Equal(t, 50, ProgressToNextLevel(15))
	assert.Equal(t, 0, ProgressToNextLevel(30))
	assert.Equal(t, 50, ProgressToNextLevel(90))
	assert.Equal(t, 100, ProgressToNextLevel(150))
	assert.Equal(t, 100, ProgressToNextLevel(500))
}

func completedPromoOrder(id, partnerID string, commission int64) *domain.Order {
	return &domain.Order{
		ID:         id,
		SupplierID: "s1",
		Status:     domain.OrderStatusCompleted,
		Promo: &domain.Promo{
			Code:              "AMI-1",
			PartnerID:         partnerID,
			DiscountAmount:    500,
			PartnerCommission: commission,
		},
		SettlementStatus: domain.SettlementUnsettled,
		CreatedAt:        time.Now(),
	}
}

func newPartnerTestEnv(partner *domain.Partner, orders ...*domain.Order) (*PartnerUsecase, *fakePartnerRepo, *fakeWithdrawalRepo, *fakeOrderRepo) {
	partnerRepo := newFakePartnerRepo(partner)
	withdrawalRepo := newFakeWithdrawalRepo()
	orderRepo := newFakeOrderRepo(orders...)
	uc := NewPartnerUsecase(partnerRepo, withdrawalRepo, orderRepo, newFakeConfigRepo(), fakeTxManager{})
	return uc, partnerRepo, withdrawalRepo, orderRepo
}

func TestCreditCompletedOrderPaysOnce(t *testing.T) {
	partner := &domain.Partner{ID: "pt1", PromoCode: "AMI-1", Level: domain.PartnerLevelStandard}
	uc, partnerRepo, _, _ := newPartnerTestEnv(partner, completedPromoOrder("o1", "pt1", 150))
	ctx := context.Background()

	require.NoError(t, uc.CreditCompletedOrder(ctx, "o1"))

	got, err := partnerRepo.GetByID(ctx, "pt1")
	require.NoError(t, err)
	assert.Equal(t, int64(150), got.WalletBalance)
	assert.Equal(t, int64(150), got.TotalEarnings)
	assert.Equal(t, 1, got.TotalSales)

	// A redundant completion event pays nothing; the commission_paid flag
	// already flipped.
	require.NoError(t, uc.CreditCompletedOrder(ctx, "o1"))
	got, err = partnerRepo.GetByID(ctx, "pt1")
	require.NoError(t, err)
	assert.Equal(t, int64(150), got.WalletBalance)
	assert.Equal(t, 1, got.TotalSales)
}

func TestCreditUsesFrozenCommission(t *testing.T) {
	// Premium-level partner, but the order froze a standard-level commission at
	// checkout. The frozen figure wins.
	partner := &domain.Partner{ID: "pt1", PromoCode: "AMI-1", Level: domain.PartnerLevelPremium, TotalSales: 200}
	uc, partnerRepo, _, _ := newPartnerTestEnv(partner, completedPromoOrder("o1", "pt1", 150))

	require.NoError(t, uc.CreditCompletedOrder(context.Background(), "o1"))

	got, err := partnerRepo.GetByID(context.Background(), "pt1")
	require.NoError(t, err)
	assert.Equal(t, int64(150), got.WalletBalance)
}

func TestCreditIgnoresNonCompletedAndPromoless(t *testing.T) {
	partner := &domain.Partner{ID: "pt1", PromoCode: "AMI-1"}
	delivered := completedPromoOrder("o1", "pt1", 150)
	delivered.Status = domain.OrderStatusDelivered
	promoless := &domain.Order{ID: "o2", SupplierID: "s1", Status: domain.OrderStatusCompleted, CreatedAt: time.Now()}
	uc, partnerRepo, _, _ := newPartnerTestEnv(partner, delivered, promoless)
	ctx := context.Background()

	require.NoError(t, uc.CreditCompletedOrder(ctx, "o1"))
	require.NoError(t, uc.CreditCompletedOrder(ctx, "o2"))

	got, err := partnerRepo.GetByID(ctx, "pt1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.WalletBalance, "delivered pays nobody; no promo, no commission")
}

func TestCreditPromotesLevelAtThreshold(t *testing.T) {
	partner := &domain.Partner{ID: "pt1", PromoCode: "AMI-1", Level: domain.PartnerLevelStandard, TotalSales: 29}
	uc, partnerRepo, _, _ := newPartnerTestEnv(partner, completedPromoOrder("o1", "pt1", 150))

	require.NoError(t, uc.CreditCompletedOrder(context.Background(), "o1"))

	got, err := partnerRepo.GetByID(context.Background(), "pt1")
	require.NoError(t, err)
	assert.Equal(t, 30, got.TotalSales)
	assert.Equal(t, domain.PartnerLevelActif, got.Level, "sale #30 promotes to actif")
}

func TestRequestWithdrawalValidation(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		balance int64
		amount  int64
		wantErr error
	}{
		{"below standard minimum", domain.PartnerLevelStandard, 5000, 1999, domain.ErrBelowMinimum},
		{"at standard minimum", domain.PartnerLevelStandard, 5000, 2000, nil},
		{"below actif minimum", domain.PartnerLevelActif, 20000, 4999, domain.ErrBelowMinimum},
		{"at actif minimum", domain.PartnerLevelActif, 20000, 5000, nil},
		{"below premium minimum", domain.PartnerLevelPremium, 20000, 9999, domain.ErrBelowMinimum},
		{"at premium minimum", domain.PartnerLevelPremium, 20000, 10000, nil},
		{"over balance", domain.PartnerLevelStandard, 2500, 3000, domain.ErrInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			partner := &domain.Partner{ID: "pt1", Level: tt.level, WalletBalance: tt.balance}
			uc, partnerRepo, _, _ := newPartnerTestEnv(partner)

			w, err := uc.RequestWithdrawal(context.Background(), "pt1", tt.amount, domain.JSONB{"method": "wave"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				// Failed validation never touches the wallet.
				got, gErr := partnerRepo.GetByID(context.Background(), "pt1")
				require.NoError(t, gErr)
				assert.Equal(t, tt.balance, got.WalletBalance)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.WithdrawalStatusPending, w.Status)

			got, gErr := partnerRepo.GetByID(context.Background(), "pt1")
			require.NoError(t, gErr)
			assert.Equal(t, tt.balance-tt.amount, got.WalletBalance, "request debits immediately")
		})
	}
}

func TestMarkWithdrawalPaid(t *testing.T) {
	partner := &domain.Partner{ID: "pt1", Level: domain.PartnerLevelStandard, WalletBalance: 5000}
	uc, partnerRepo, _, _ := newPartnerTestEnv(partner)
	ctx := context.Background()

	w, err := uc.RequestWithdrawal(ctx, "pt1", 2000, domain.JSONB{"method": "wave", "phone": "770000000"})
	require.NoError(t, err)

	require.NoError(t, uc.MarkWithdrawalPaid(ctx, w.ID))

	got, err := partnerRepo.GetByID(ctx, "pt1")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), got.TotalWithdrawn)
	assert.Equal(t, int64(3000), got.WalletBalance)

	// Marking twice is a no-op.
	require.NoError(t, uc.MarkWithdrawalPaid(ctx, w.ID))
	got, err = partnerRepo.GetByID(ctx, "pt1")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), got.TotalWithdrawn)
}

func TestGetProfile(t *testing.T) {
	partner := &domain.Partner{ID: "pt1", Level: domain.PartnerLevelActif, TotalSales: 90, WalletBalance: 12000}
	uc, _, _, _ := newPartnerTestEnv(partner)

	profile, err := uc.GetProfile(context.Background(), "pt1")
	require.NoError(t, err)
	assert.Equal(t, 50, profile.Progress)
	assert.Equal(t, int64(5000), profile.MinWithdrawal)
}
