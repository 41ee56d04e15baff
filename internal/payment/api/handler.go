package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"dinehub/internal/logger"
	"dinehub/internal/models"
	"dinehub/internal/payment"
	"dinehub/internal/utils"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Stripe caps webhook payloads well below this.
const maxWebhookBody = 65536

type OrderService interface {
	GetOrder(id string) (*models.OrderWithItems, error)
	MarkPaid(ctx context.Context, orderID string) (*models.Order, error)
}

type Handler struct {
	StripeService *payment.StripeService
	OrderService  OrderService
	WebhookSecret string
	Logger        *logger.Logger
}

// CreateIntent opens a payment intent for an order and hands the client
// secret back to the customer app.
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"order_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.OrderID == "" {
		http.Error(w, "order_id is required", http.StatusBadRequest)
		return
	}

	orderData, err := h.OrderService.GetOrder(req.OrderID)
	if err != nil {
		h.Logger.Error("PAYMENT", fmt.Sprintf("CreateIntent: order not found: %v", err))
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	intent, err := h.StripeService.CreatePaymentIntent(r.Context(), &orderData.Order)
	if err != nil {
		h.Logger.Error("PAYMENT", fmt.Sprintf("CreateIntent: %v", err))
		http.Error(w, "Failed to create payment intent: "+err.Error(), http.StatusBadRequest)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Payment intent created", intent))
}

// Webhook receives Stripe's signed event stream. A succeeded payment
// intent marks its order paid; everything else is acknowledged and
// dropped. Stripe retries on non-2xx, so transient failures return 500.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.WebhookSecret)
	if err != nil {
		h.Logger.Warn("PAYMENT", fmt.Sprintf("Webhook: signature verification failed: %v", err))
		http.Error(w, "Invalid signature", http.StatusBadRequest)
		return
	}

	if event.Type != "payment_intent.succeeded" {
		h.Logger.Debug("PAYMENT", fmt.Sprintf("Webhook: ignoring event %s", event.Type))
		w.WriteHeader(http.StatusOK)
		return
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		h.Logger.Error("PAYMENT", fmt.Sprintf("Webhook: failed to decode payment intent: %v", err))
		http.Error(w, "Malformed event", http.StatusBadRequest)
		return
	}

	orderID := intent.Metadata["order_id"]
	if orderID == "" {
		h.Logger.Warn("PAYMENT", fmt.Sprintf("Webhook: intent %s carries no order_id", intent.ID))
		w.WriteHeader(http.StatusOK)
		return
	}

	if _, err := h.OrderService.MarkPaid(r.Context(), orderID); err != nil {
		h.Logger.Error("PAYMENT", fmt.Sprintf("Webhook: failed to mark order %s paid: %v", orderID, err))
		http.Error(w, "Failed to record payment", http.StatusInternalServerError)
		return
	}

	h.Logger.Info("PAYMENT", fmt.Sprintf("Order %s marked paid via intent %s", orderID, intent.ID))
	w.WriteHeader(http.StatusOK)
}
