package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"dinehub/internal/checkout"
	"dinehub/internal/logger"
	"dinehub/internal/utils"
)

type Handler struct {
	CheckoutService *checkout.Service
	Logger          *logger.Logger
}

// ValidatePromo handles POST /api/checkout/validate-promo. The response is
// authoritative; clients reconcile their local preview against it.
func (h *Handler) ValidatePromo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TenantID   string `json:"tenant_id"`
		Code       string `json:"code"`
		OrderTotal int64  `json:"order_total"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Code == "" {
		http.Error(w, "Promo code cannot be empty", http.StatusBadRequest)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("ValidatePromo: code=%s total=%d", req.Code, req.OrderTotal))

	result, err := h.CheckoutService.ValidatePromo(r.Context(), req.TenantID, req.Code, req.OrderTotal)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ValidatePromo: %v", err))
		http.Error(w, "Promo validation failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Promo validated", result))
}
