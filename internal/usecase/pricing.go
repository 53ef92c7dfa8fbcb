package usecase

import "soukly-backend/internal/domain"

// Pricing is the financial breakdown frozen onto an order at creation. It is
// computed exactly once; later partner-level or settings changes never touch
// an existing order.
type Pricing struct {
	Subtotal              int64
	SupplierMargin        int64 // what the supplier recoups per item (cost side)
	PlatformMargin        int64 // sum of (selling - cost) * qty
	SupplierDeliveryShare int64
	PlatformDeliveryShare int64
	PartnerCommission     int64
	FinalTotal            int64
}

// SupplierKeeps is the part of the customer payment the supplier retains:
// item cost recoup plus its delivery share.
func (p Pricing) SupplierKeeps() int64 {
	return p.SupplierMargin + p.SupplierDeliveryShare
}

// PlatformKeeps is the part the supplier owes the platform once the order is
// delivered: item margin plus the platform delivery share.
func (p Pricing) PlatformKeeps() int64 {
	return p.PlatformMargin + p.PlatformDeliveryShare
}

// ComputePricing derives every money field of a new order. All inputs are
// whole FCFA. The platform delivery share uses floor division; the remainder
// stays with the supplier.
func ComputePricing(items []domain.OrderItem, deliveryFee int64, platformDeliveryPct int, promo *domain.Promo) Pricing {
	var p Pricing
	for _, it := range items {
		p.Subtotal += it.UnitSellingPrice * int64(it.Quantity)
		p.PlatformMargin += it.Margin()
		p.SupplierMargin += it.UnitSupplierCost * int64(it.Quantity)
	}

	p.PlatformDeliveryShare = deliveryFee * int64(platformDeliveryPct) / 100
	p.SupplierDeliveryShare = deliveryFee - p.PlatformDeliveryShare

	var discount int64
	if promo != nil {
		discount = promo.DiscountAmount
		p.PartnerCommission = promo.PartnerCommission
	}

	p.FinalTotal = p.Subtotal + deliveryFee - discount
	if p.FinalTotal < 0 {
		p.FinalTotal = 0
	}
	return p
}

// DebtContribution is one order's addition to the supplier's platform debt.
// Kept next to ComputePricing so both sides of the split share one formula.
func DebtContribution(items []domain.OrderItem, deliveryFee int64, platformDeliveryPct int) int64 {
	var margin int64
	for _, it := range items {
		margin += it.Margin()
	}
	return margin + deliveryFee*int64(platformDeliveryPct)/100
}
