package domain

// Order Statuses
const (
	OrderStatusPending        = "pending"
	OrderStatusPreparing      = "preparing"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCompleted      = "completed"
	OrderStatusCancelled      = "cancelled"
)

// Settlement accounting flag on orders. Independent of the order status:
// it only tracks whether the supplier has cleared this order's platform share.
const (
	SettlementUnsettled = "unsettled"
	SettlementPaid      = "paid"
)

// Settlement request statuses
const (
	SettlementStatusPending  = "pending"
	SettlementStatusApproved = "approved"
	SettlementStatusRejected = "rejected"
)

// Supplier statuses
const (
	SupplierStatusActive    = "active"
	SupplierStatusSuspended = "suspended"
	SupplierStatusBlocked   = "blocked"
)

// Partner levels
const (
	PartnerLevelStandard = "standard"
	PartnerLevelActif    = "actif"
	PartnerLevelPremium  = "premium"
)

// Withdrawal statuses
const (
	WithdrawalStatusPending = "pending"
	WithdrawalStatusPaid    = "paid"
)

// Payment Methods
const (
	PaymentMethodCOD         = "cod"
	PaymentMethodOrangeMoney = "orange_money"
	PaymentMethodWave        = "wave"
)

// Delivery Methods
const (
	DeliveryMethodCourier = "courier"
	DeliveryMethodPickup  = "pickup"
)

// List Exports for API
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

var PartnerLevels = []string{
	PartnerLevelStandard,
	PartnerLevelActif,
	PartnerLevelPremium,
}

var PaymentMethods = []string{
	PaymentMethodCOD,
	PaymentMethodOrangeMoney,
	PaymentMethodWave,
}

// ActiveOrderStatuses is the set that makes an order the supplier's current
// work item. The oldest order in this set is the only one the supplier sees.
var ActiveOrderStatuses = []string{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusOutForDelivery,
}

// DebtOrderStatuses is the set of statuses whose orders contribute to the
// supplier's platform debt (while still unsettled).
var DebtOrderStatuses = []string{
	OrderStatusDelivered,
	OrderStatusCompleted,
}
