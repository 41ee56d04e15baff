// Package payment drives card payments for placed orders through Stripe.
// Amounts are already in minor units everywhere in this codebase, so they
// cross the Stripe boundary unconverted.
package payment

import (
	"context"
	"errors"
	"fmt"
	"os"

	"dinehub/internal/logger"
	"dinehub/internal/models"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

var (
	ErrStripeAPIError         = errors.New("stripe API error")
	ErrStripeClientInitFailed = errors.New("failed to initialize Stripe client")
)

type StripeService struct {
	client   *client.API
	currency string
	log      *logger.Logger
}

func NewStripeService(currency string, log *logger.Logger) (*StripeService, error) {
	stripeKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeKey == "" {
		log.Error("STRIPE", "STRIPE_SECRET_KEY environment variable not set")
		return nil, ErrStripeClientInitFailed
	}

	sc := client.New(stripeKey, nil)
	if currency == "" {
		currency = "usd"
	}

	log.Info("STRIPE", "Stripe client initialized successfully")
	return &StripeService{client: sc, currency: currency, log: log}, nil
}

// CreatePaymentIntent opens a Stripe payment intent for an order. The
// amount comes from the stored order, never from the request, so the
// client cannot pick its own price.
func (s *StripeService) CreatePaymentIntent(ctx context.Context, order *models.Order) (*models.PaymentIntent, error) {
	if order.Paid {
		return nil, fmt.Errorf("order %s is already paid", order.OrderID)
	}
	if order.Total <= 0 {
		return nil, fmt.Errorf("order %s has nothing to charge", order.OrderID)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(order.Total),
		Currency: stripe.String(s.currency),
		Metadata: map[string]string{
			"order_id":  order.OrderID,
			"tenant_id": order.TenantID,
		},
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	pi, err := s.client.PaymentIntents.New(params)
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to create payment intent for order %s: %v", order.OrderID, err))
		return nil, fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}

	s.log.Info("STRIPE", fmt.Sprintf("Payment intent %s created for order %s, amount %d", pi.ID, order.OrderID, order.Total))
	return &models.PaymentIntent{
		IntentID:     pi.ID,
		OrderID:      order.OrderID,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		ClientSecret: pi.ClientSecret,
	}, nil
}
