package domain

import "errors"

// Sentinel errors returned by usecases. Handlers map these to HTTP statuses
// with errors.Is, so wrap them (fmt.Errorf("...: %w", ErrX)) instead of
// returning new ad-hoc errors for the same condition.
var (
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition: the requested status jump is not in the allowed
	// edge set (e.g. pending -> delivered).
	ErrInvalidTransition = errors.New("invalid order status transition")

	// ErrTerminalState: cancellation attempted after the order left the
	// pre-delivery states.
	ErrTerminalState = errors.New("order already reached a terminal state")

	// ErrSettlementPending: the supplier already has a settlement awaiting
	// admin review. The existing one stands.
	ErrSettlementPending = errors.New("a pending settlement already exists")

	// ErrNoDebt: a settlement was declared while the recomputed debt is zero.
	ErrNoDebt = errors.New("no outstanding platform debt")

	// Withdrawal validation
	ErrBelowMinimum        = errors.New("amount below the minimum withdrawal for this level")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")

	// ErrSupplierConflict: a cart add would mix products from two suppliers.
	ErrSupplierConflict = errors.New("cart is limited to a single supplier")

	// ErrStaleDebtRead: the debt recompute could not read the order set. The
	// cached value is kept as-is, never zeroed.
	ErrStaleDebtRead = errors.New("debt recompute failed, cached value preserved")

	ErrEmptyCart          = errors.New("cart is empty")
	ErrCancelReasonNeeded = errors.New("cancellation requires a reason")
	ErrInvalidPromoCode   = errors.New("invalid promo code")
)
