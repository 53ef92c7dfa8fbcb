package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"soukly-backend/internal/domain"
	"soukly-backend/internal/usecase"
	"soukly-backend/pkg/utils"
)

const maxProofSize = 10 << 20 // 10 MB

// SupplierHandler is the supplier back-office: the single active order, debt
// wallet, nightly access status and the settlement workflow. The supplier id
// always comes from the JWT actor claim, never from the request.
type SupplierHandler struct {
	orderUC      *usecase.OrderUsecase
	debtUC       *usecase.DebtUsecase
	settlementUC *usecase.SettlementUsecase
	closingUC    *usecase.ClosingUsecase
}

func NewSupplierHandler(orderUC *usecase.OrderUsecase, debtUC *usecase.DebtUsecase, settlementUC *usecase.SettlementUsecase, closingUC *usecase.ClosingUsecase) *SupplierHandler {
	return &SupplierHandler{
		orderUC:      orderUC,
		debtUC:       debtUC,
		settlementUC: settlementUC,
		closingUC:    closingUC,
	}
}

func supplierFrom(r *http.Request) (*domain.User, string, bool) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok || user.ActorID == "" {
		return nil, "", false
	}
	return user, user.ActorID, true
}

func (h *SupplierHandler) GetActiveOrder(w http.ResponseWriter, r *http.Request) {
	_, supplierID, ok := supplierFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	view, err := h.orderUC.GetActiveOrder(r.Context(), supplierID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}

type transitionReq struct {
	Status string  `json:"status"`
	Reason *string `json:"reason"`
}

// TransitionOrder advances the supplier's order along the status chain. It is
// refused while the closing gate has the account blocked.
func (h *SupplierHandler) TransitionOrder(w http.ResponseWriter, r *http.Request) {
	user, supplierID, ok := supplierFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req transitionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	blocked, err := h.closingUC.IsBlocked(r.Context(), supplierID)
	if err != nil {
		slog.Error("Handler: TransitionOrder gate check failed", "supplier_id", supplierID, "error", err)
		writeDomainError(w, err)
		return
	}
	if blocked {
		utils.WriteError(w, http.StatusLocked, "account blocked until outstanding debt is settled")
		return
	}

	order, err := h.orderUC.Transition(r.Context(), r.PathValue("id"), req.Status, req.Reason, user)
	if err != nil {
		slog.Warn("Handler: TransitionOrder refused", "order_id", r.PathValue("id"), "target", req.Status, "error", err)
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

// GetWallet returns the display debt plus the live per-order breakdown so the
// supplier sees exactly which orders owe what.
func (h *SupplierHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	_, supplierID, ok := supplierFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	debt, err := h.debtUC.GetDebt(r.Context(), supplierID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	orderIDs, total, err := h.debtUC.Snapshot(r.Context(), supplierID)
	if err != nil {
		// The cached figure is still worth showing when the live scan fails.
		slog.Warn("Handler: GetWallet snapshot failed", "supplier_id", supplierID, "error", err)
		utils.WriteJSON(w, http.StatusOK, map[string]any{"platformDebt": debt})
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"platformDebt": total,
		"cachedDebt":   debt,
		"orderIds":     orderIDs,
	})
}

func (h *SupplierHandler) GetAccessStatus(w http.ResponseWriter, r *http.Request) {
	_, supplierID, ok := supplierFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	status, err := h.closingUC.Status(r.Context(), supplierID, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, status)
}

type declareSettlementReq struct {
	TransactionRef string `json:"transactionRef"`
}

func (h *SupplierHandler) DeclareSettlement(w http.ResponseWriter, r *http.Request) {
	_, supplierID, ok := supplierFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req declareSettlementReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TransactionRef == "" {
		utils.WriteError(w, http.StatusBadRequest, "transactionRef is required")
		return
	}
	settlement, err := h.settlementUC.Declare(r.Context(), supplierID, req.TransactionRef)
	if err != nil {
		slog.Warn("Handler: DeclareSettlement refused", "supplier_id", supplierID, "error", err)
		writeDomainError(w, err)
		return
	}
	slog.Info("Handler: DeclareSettlement", "settlement_id", settlement.ID, "supplier_id", supplierID, "amount", settlement.Amount)
	utils.WriteJSON(w, http.StatusCreated, settlement)
}

func (h *SupplierHandler) AttachProof(w http.ResponseWriter, r *http.Request) {
	_, supplierID, ok := supplierFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := r.ParseMultipartForm(maxProofSize); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("proof")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "proof file is required")
		return
	}
	defer file.Close()

	url, err := h.settlementUC.AttachProof(r.Context(), r.PathValue("id"), supplierID, file, header.Header.Get("Content-Type"))
	if err != nil {
		slog.Error("Handler: AttachProof failed", "settlement_id", r.PathValue("id"), "error", err)
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"proofUrl": url})
}

func (h *SupplierHandler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	_, supplierID, ok := supplierFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	settlements, err := h.settlementUC.ListBySupplier(r.Context(), supplierID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, settlements)
}
