package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"dinehub/internal/cart"
	"dinehub/internal/logger"
	"dinehub/internal/orders"
	"dinehub/internal/receipt"
	"dinehub/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
)

type Handler struct {
	OrderService *orders.Service
	CartService  *cart.Service
	Receipts     *receipt.PDFGenerator
	Logger       *logger.Logger
}

// PlaceOrder turns the session's cart into an order and clears the cart.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TenantID  string `json:"tenant_id"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("PlaceOrder: session=%s", req.SessionID))

	cartData, err := h.CartService.Get(r.Context(), req.TenantID, req.SessionID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("PlaceOrder: failed to load cart: %v", err))
		http.Error(w, "Failed to load cart: "+err.Error(), http.StatusInternalServerError)
		return
	}

	placed, err := h.OrderService.PlaceOrder(r.Context(), cartData)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("PlaceOrder: %v", err))
		http.Error(w, "Failed to place order: "+err.Error(), http.StatusBadRequest)
		return
	}

	// Checkout completed: the cart is done for.
	if _, err := h.CartService.Clear(r.Context(), req.TenantID, req.SessionID); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("PlaceOrder: failed to clear cart for session %s: %v", req.SessionID, err))
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Order placed", placed))
}

// GetOrder serves the order tracking view.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	h.Logger.Info("API", fmt.Sprintf("GetOrder: orderId=%s", orderID))

	orderData, err := h.OrderService.GetOrder(orderID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetOrder: order not found: %v", err))
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Order", orderData))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	list, err := h.OrderService.ListOrders(tenantID, 0)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListOrders: %v", err))
		http.Error(w, "Failed to list orders: "+err.Error(), http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Orders", list))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("UpdateStatus: orderId=%s status=%s", orderID, req.Status))

	order, err := h.OrderService.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateStatus: %v", err))
		http.Error(w, "Failed to update status: "+err.Error(), http.StatusBadRequest)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Status updated", order))
}

// Receipt serves the order's PDF receipt once it is paid.
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	orderData, err := h.OrderService.GetOrder(orderID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Receipt: order not found: %v", err))
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	if !orderData.Order.Paid {
		http.Error(w, "Order is not paid yet", http.StatusConflict)
		return
	}

	trackingQR, err := qrcode.Encode("dinehub://orders/"+orderID, qrcode.Medium, 256)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("Receipt: failed to render tracking QR: %v", err))
		trackingQR = nil
	}

	pdf, err := h.Receipts.Generate(*orderData, trackingQR)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Receipt: %v", err))
		http.Error(w, "Failed to generate receipt: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", orderID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
