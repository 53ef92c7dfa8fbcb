package v1

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"soukly-backend/internal/usecase"
	"soukly-backend/pkg/utils"
)

type OrderHandler struct {
	orderUC *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{orderUC: uc}
}

// Checkout turns the session cart into an order. All pricing is frozen server
// side; the request only carries customer and fulfilment choices.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing X-Session-ID header")
		return
	}
	var req usecase.CheckoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Customer.Name == "" || req.Customer.Phone == "" {
		utils.WriteError(w, http.StatusBadRequest, "customer name and phone are required")
		return
	}

	order, err := h.orderUC.Checkout(r.Context(), sid, req)
	if err != nil {
		slog.Error("Handler: Checkout failed", "session_id", sid, "error", err)
		writeDomainError(w, err)
		return
	}
	slog.Info("Handler: Checkout", "order_id", order.ID, "code", order.Code, "total", order.FinalTotal)
	utils.WriteJSON(w, http.StatusCreated, order)
}

// TrackOrder is the customer-facing lookup by order id. It returns the order
// with its transition history so the storefront can render progress.
func (h *OrderHandler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	order, err := h.orderUC.GetOrder(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	history, err := h.orderUC.GetOrderHistory(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"order":   order,
		"history": history,
	})
}
