package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soukly-backend/internal/domain"
)

func TestComputePricingSplitsOrderTotal(t *testing.T) {
	// 8,000 FCFA cost, 11,000 selling, 1,000 courier fee with a 10% platform
	// share: customer pays 12,000, supplier keeps 8,900, platform is owed 3,100.
	items := []domain.OrderItem{
		{ProductID: "p1", Quantity: 1, UnitSellingPrice: 11000, UnitSupplierCost: 8000},
	}

	p := ComputePricing(items, 1000, 10, nil)

	assert.Equal(t, int64(11000), p.Subtotal)
	assert.Equal(t, int64(3000), p.PlatformMargin)
	assert.Equal(t, int64(100), p.PlatformDeliveryShare)
	assert.Equal(t, int64(900), p.SupplierDeliveryShare)
	assert.Equal(t, int64(12000), p.FinalTotal)
	assert.Equal(t, int64(8900), p.SupplierKeeps())
	assert.Equal(t, int64(3100), p.PlatformKeeps())

	// Supplier share plus platform share always reconstructs the payment.
	assert.Equal(t, p.FinalTotal, p.SupplierKeeps()+p.PlatformKeeps())
}

func TestComputePricingMultipleLines(t *testing.T) {
	items := []domain.OrderItem{
		{ProductID: "p1", Quantity: 2, UnitSellingPrice: 5000, UnitSupplierCost: 3500},
		{ProductID: "p2", Quantity: 1, UnitSellingPrice: 2000, UnitSupplierCost: 1200},
	}

	p := ComputePricing(items, 1000, 10, nil)

	assert.Equal(t, int64(12000), p.Subtotal)
	assert.Equal(t, int64(3800), p.PlatformMargin)
	assert.Equal(t, int64(8200), p.SupplierMargin)
	assert.Equal(t, int64(13000), p.FinalTotal)
}

func TestComputePricingPromoDiscount(t *testing.T) {
	items := []domain.OrderItem{
		{ProductID: "p1", Quantity: 1, UnitSellingPrice: 11000, UnitSupplierCost: 8000},
	}
	promo := &domain.Promo{Code: "AMI-1", DiscountAmount: 500, PartnerCommission: 150}

	p := ComputePricing(items, 1000, 10, promo)

	assert.Equal(t, int64(11500), p.FinalTotal)
	assert.Equal(t, int64(150), p.PartnerCommission)
}

func TestComputePricingTotalNeverNegative(t *testing.T) {
	items := []domain.OrderItem{
		{ProductID: "p1", Quantity: 1, UnitSellingPrice: 200, UnitSupplierCost: 100},
	}
	promo := &domain.Promo{DiscountAmount: 10000}

	p := ComputePricing(items, 0, 10, promo)
	assert.Equal(t, int64(0), p.FinalTotal)
}

func TestComputePricingDeliveryShareFloors(t *testing.T) {
	// 999 * 10% = 99.9; platform gets the floor, the remainder stays with the
	// supplier so the split still sums to the fee.
	p := ComputePricing(nil, 999, 10, nil)

	assert.Equal(t, int64(99), p.PlatformDeliveryShare)
	assert.Equal(t, int64(900), p.SupplierDeliveryShare)
}

func TestDebtContributionMatchesPlatformKeeps(t *testing.T) {
	items := []domain.OrderItem{
		{ProductID: "p1", Quantity: 3, UnitSellingPrice: 4000, UnitSupplierCost: 2500},
	}

	p := ComputePricing(items, 1000, 10, nil)
	require.Equal(t, p.PlatformKeeps(), DebtContribution(items, 1000, 10))
}

func TestPickupOrderHasNoDeliverySplit(t *testing.T) {
	items := []domain.OrderItem{
		{ProductID: "p1", Quantity: 1, UnitSellingPrice: 11000, UnitSupplierCost: 8000},
	}

	p := ComputePricing(items, 0, 10, nil)

	assert.Equal(t, int64(0), p.PlatformDeliveryShare)
	assert.Equal(t, int64(0), p.SupplierDeliveryShare)
	assert.Equal(t, int64(11000), p.FinalTotal)
	assert.Equal(t, int64(3000), p.PlatformKeeps())
}
