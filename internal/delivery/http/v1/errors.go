package v1

import (
	"errors"
	"net/http"

	"soukly-backend/internal/domain"
	"soukly-backend/pkg/utils"
)

// writeDomainError maps sentinel domain errors to HTTP statuses. Anything
// unrecognized is a 500 with a generic message; the wrapped detail stays in
// the logs.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrTerminalState),
		errors.Is(err, domain.ErrCancelReasonNeeded),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrSupplierConflict),
		errors.Is(err, domain.ErrInvalidPromoCode),
		errors.Is(err, domain.ErrNoDebt):
		utils.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrSettlementPending):
		utils.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrBelowMinimum),
		errors.Is(err, domain.ErrInsufficientBalance):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrStaleDebtRead):
		utils.WriteError(w, http.StatusServiceUnavailable, "temporary read failure, try again")
	default:
		utils.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
