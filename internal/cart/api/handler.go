package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"dinehub/internal/cart"
	"dinehub/internal/logger"
	"dinehub/internal/models"
	"dinehub/internal/pricing"
	"dinehub/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	CartService *cart.Service
	Logger      *logger.Logger
}

// cartResponse carries the mutated cart plus the stale-discount notice when
// a mutation knocked a promo below its minimum order.
type cartResponse struct {
	Cart                  *models.Cart `json:"cart"`
	DiscountRemoved       bool         `json:"discount_removed,omitempty"`
	DiscountRemovedReason string       `json:"discount_removed_reason,omitempty"`
}

func (h *Handler) session(r *http.Request) (tenantID, sessionID string) {
	return chi.URLParam(r, "tenantID"), chi.URLParam(r, "sessionID")
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	tenantID, sessionID := h.session(r)

	cartData, err := h.CartService.Get(r.Context(), tenantID, sessionID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetCart: %v", err))
		http.Error(w, "Failed to load cart: "+err.Error(), http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Cart", cartData))
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	tenantID, sessionID := h.session(r)

	var item models.LineItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.CartService.AddItem(r.Context(), tenantID, sessionID, item)
	if err != nil {
		h.writeCartError(w, "AddItem", err)
		return
	}

	h.writeResult(w, result)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	tenantID, sessionID := h.session(r)
	menuItemID := chi.URLParam(r, "menuItemID")

	var req struct {
		SizeID      string   `json:"size_id"`
		ModifierIDs []string `json:"modifier_ids"`
		Quantity    int      `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.CartService.UpdateQuantity(r.Context(), tenantID, sessionID, menuItemID, req.SizeID, req.ModifierIDs, req.Quantity)
	if err != nil {
		h.writeCartError(w, "UpdateItem", err)
		return
	}

	h.writeResult(w, result)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	tenantID, sessionID := h.session(r)
	menuItemID := chi.URLParam(r, "menuItemID")
	sizeID := r.URL.Query().Get("size_id")
	modifierIDs := r.URL.Query()["modifier_id"]

	result, err := h.CartService.RemoveItem(r.Context(), tenantID, sessionID, menuItemID, sizeID, modifierIDs)
	if err != nil {
		h.writeCartError(w, "RemoveItem", err)
		return
	}

	h.writeResult(w, result)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	tenantID, sessionID := h.session(r)

	result, err := h.CartService.Clear(r.Context(), tenantID, sessionID)
	if err != nil {
		h.writeCartError(w, "ClearCart", err)
		return
	}

	h.writeResult(w, result)
}

func (h *Handler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	tenantID, sessionID := h.session(r)

	var discount models.Discount
	if err := json.NewDecoder(r.Body).Decode(&discount); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.CartService.ApplyDiscount(r.Context(), tenantID, sessionID, discount)
	if err != nil {
		h.writeCartError(w, "ApplyDiscount", err)
		return
	}

	h.writeResult(w, result)
}

func (h *Handler) RemoveDiscount(w http.ResponseWriter, r *http.Request) {
	tenantID, sessionID := h.session(r)

	result, err := h.CartService.RemoveDiscount(r.Context(), tenantID, sessionID)
	if err != nil {
		h.writeCartError(w, "RemoveDiscount", err)
		return
	}

	h.writeResult(w, result)
}

func (h *Handler) writeResult(w http.ResponseWriter, result *cart.MutationResult) {
	resp := cartResponse{
		Cart:                  result.Cart,
		DiscountRemoved:       result.DiscountRemoved,
		DiscountRemovedReason: result.DiscountRemovedReason,
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Cart updated", resp))
}

// writeCartError maps service errors to status codes with the specific
// reason; validation problems are the caller's to fix.
func (h *Handler) writeCartError(w http.ResponseWriter, op string, err error) {
	h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))

	var minErr *cart.ErrMinimumNotMet
	switch {
	case pricing.IsValidationError(err), errors.As(err, &minErr):
		utils.WriteJSON(w, http.StatusUnprocessableEntity, utils.ErrorResponse("Cart update rejected", err.Error()))
	case errors.Is(err, cart.ErrLineNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Line item not found", err.Error()))
	default:
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Cart update failed", err.Error()))
	}
}
