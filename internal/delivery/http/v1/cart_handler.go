package v1

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"soukly-backend/internal/usecase"
	"soukly-backend/pkg/utils"
)

// CartHandler serves the anonymous session cart. Sessions are identified by
// the X-Session-ID header; there is no account requirement before checkout.
type CartHandler struct {
	cartUC          *usecase.CartUsecase
	maxCartQuantity int
}

func NewCartHandler(uc *usecase.CartUsecase, maxCartQuantity int) *CartHandler {
	return &CartHandler{
		cartUC:          uc,
		maxCartQuantity: maxCartQuantity,
	}
}

func sessionID(r *http.Request) string {
	return r.Header.Get("X-Session-ID")
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing X-Session-ID header")
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.cartUC.Get(sid))
}

type addToCartReq struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type cartResp struct {
	Cart             any  `json:"cart"`
	SupplierConflict bool `json:"supplierConflict"`
}

func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing X-Session-ID header")
		return
	}
	var req addToCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity > h.maxCartQuantity {
		utils.WriteError(w, http.StatusBadRequest, "quantity exceeds maximum limit")
		return
	}

	cart, conflict, err := h.cartUC.Add(r.Context(), sid, req.ProductID, req.Quantity)
	if err != nil {
		slog.Error("Handler: AddToCart failed", "session_id", sid, "product_id", req.ProductID, "error", err)
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, cartResp{Cart: cart, SupplierConflict: conflict})
}

type resolveConflictReq struct {
	Action string `json:"action"` // "replace" or "cancel"
}

func (h *CartHandler) ResolveConflict(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing X-Session-ID header")
		return
	}
	var req resolveConflictReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cart, err := h.cartUC.Resolve(sid, req.Action)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

type updateQuantityReq struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing X-Session-ID header")
		return
	}
	var req updateQuantityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity > h.maxCartQuantity {
		utils.WriteError(w, http.StatusBadRequest, "quantity exceeds maximum limit")
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.cartUC.UpdateQuantity(sid, r.PathValue("productId"), req.Quantity))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing X-Session-ID header")
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.cartUC.Remove(sid, r.PathValue("productId")))
}

type applyPromoReq struct {
	Code string `json:"code"`
}

func (h *CartHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing X-Session-ID header")
		return
	}
	var req applyPromoReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cart, err := h.cartUC.ApplyPromo(r.Context(), sid, req.Code)
	if err != nil {
		slog.Info("Handler: ApplyPromo rejected", "session_id", sid, "code", req.Code, "error", err)
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}
