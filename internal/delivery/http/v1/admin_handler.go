package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"soukly-backend/internal/domain"
	"soukly-backend/internal/usecase"
	"soukly-backend/pkg/utils"
)

type AdminHandler struct {
	orderUC      *usecase.OrderUsecase
	settlementUC *usecase.SettlementUsecase
	partnerUC    *usecase.PartnerUsecase
	configRepo   domain.ConfigRepository
}

func NewAdminHandler(orderUC *usecase.OrderUsecase, settlementUC *usecase.SettlementUsecase, partnerUC *usecase.PartnerUsecase, configRepo domain.ConfigRepository) *AdminHandler {
	return &AdminHandler{
		orderUC:      orderUC,
		settlementUC: settlementUC,
		partnerUC:    partnerUC,
		configRepo:   configRepo,
	}
}

func adminFrom(r *http.Request) (*domain.User, bool) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	return user, ok
}

func paginate(page, limit int, total int64) domain.Pagination {
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	return domain.Pagination{
		Page:       page,
		Limit:      limit,
		TotalItems: total,
		TotalPages: pages,
	}
}

func pageLimit(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, limit := pageLimit(r)
	filter := domain.OrderFilter{
		Page:       page,
		Limit:      limit,
		Status:     r.URL.Query().Get("status"),
		SupplierID: r.URL.Query().Get("supplier_id"),
		Search:     r.URL.Query().Get("search"),
	}
	orders, total, err := h.orderUC.GetAllOrders(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"orders": orders,
		"pagination": paginate(page, limit, total),
	})
}

// CompleteOrder performs the admin-only delivered → completed transition that
// releases partner commission.
func (h *AdminHandler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := adminFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	order, err := h.orderUC.Transition(r.Context(), r.PathValue("id"), domain.OrderStatusCompleted, nil, user)
	if err != nil {
		slog.Warn("Handler: CompleteOrder refused", "order_id", r.PathValue("id"), "error", err)
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

type cancelOrderReq struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := adminFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req cancelOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	order, err := h.orderUC.Transition(r.Context(), r.PathValue("id"), domain.OrderStatusCancelled, &req.Reason, user)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

func (h *AdminHandler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	page, limit := pageLimit(r)
	status := r.URL.Query().Get("status")
	if status == "" {
		status = domain.SettlementStatusPending
	}
	settlements, total, err := h.settlementUC.ListByStatus(r.Context(), status, limit, (page-1)*limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"settlements": settlements,
		"pagination": paginate(page, limit, total),
	})
}

func (h *AdminHandler) ApproveSettlement(w http.ResponseWriter, r *http.Request) {
	settlement, err := h.settlementUC.Approve(r.Context(), r.PathValue("id"))
	if err != nil {
		slog.Warn("Handler: ApproveSettlement refused", "settlement_id", r.PathValue("id"), "error", err)
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, settlement)
}

type rejectSettlementReq struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) RejectSettlement(w http.ResponseWriter, r *http.Request) {
	var req rejectSettlementReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reason == "" {
		utils.WriteError(w, http.StatusBadRequest, "reason is required")
		return
	}
	settlement, err := h.settlementUC.Reject(r.Context(), r.PathValue("id"), req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, settlement)
}

func (h *AdminHandler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	page, limit := pageLimit(r)
	status := r.URL.Query().Get("status")
	if status == "" {
		status = domain.WithdrawalStatusPending
	}
	withdrawals, total, err := h.partnerUC.ListWithdrawalsByStatus(r.Context(), status, limit, (page-1)*limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"withdrawals": withdrawals,
		"pagination": paginate(page, limit, total),
	})
}

func (h *AdminHandler) MarkWithdrawalPaid(w http.ResponseWriter, r *http.Request) {
	if err := h.partnerUC.MarkWithdrawalPaid(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": domain.WithdrawalStatusPaid})
}

func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.configRepo.GetSettings(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, settings)
}

func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings domain.PlatformSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.configRepo.UpdateSettings(r.Context(), &settings); err != nil {
		slog.Error("Handler: UpdateSettings failed", "error", err)
		writeDomainError(w, err)
		return
	}
	slog.Info("Handler: UpdateSettings", "closing_time", settings.ClosingTime, "delivery_pct", settings.PlatformDeliveryPct)
	utils.WriteJSON(w, http.StatusOK, settings)
}
