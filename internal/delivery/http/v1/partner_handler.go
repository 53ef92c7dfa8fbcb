package v1

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"soukly-backend/internal/domain"
	"soukly-backend/internal/usecase"
	"soukly-backend/pkg/utils"
)

type PartnerHandler struct {
	partnerUC *usecase.PartnerUsecase
}

func NewPartnerHandler(uc *usecase.PartnerUsecase) *PartnerHandler {
	return &PartnerHandler{partnerUC: uc}
}

func partnerFrom(r *http.Request) (string, bool) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok || user.ActorID == "" {
		return "", false
	}
	return user.ActorID, true
}

func (h *PartnerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := partnerFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	profile, err := h.partnerUC.GetProfile(r.Context(), partnerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, profile)
}

type withdrawalReq struct {
	Amount        int64        `json:"amount"`
	PayoutDetails domain.JSONB `json:"payoutDetails"`
}

func (h *PartnerHandler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := partnerFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req withdrawalReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount <= 0 {
		utils.WriteError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	withdrawal, err := h.partnerUC.RequestWithdrawal(r.Context(), partnerID, req.Amount, req.PayoutDetails)
	if err != nil {
		slog.Warn("Handler: RequestWithdrawal refused", "partner_id", partnerID, "amount", req.Amount, "error", err)
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, withdrawal)
}

func (h *PartnerHandler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := partnerFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	withdrawals, err := h.partnerUC.ListWithdrawals(r.Context(), partnerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, withdrawals)
}
