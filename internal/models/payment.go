package models

// PaymentIntent is what the client needs to complete a card payment. The
// client secret goes straight to Stripe.js and is never stored.
type PaymentIntent struct {
	IntentID     string `json:"intent_id"`
	OrderID      string `json:"order_id"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	ClientSecret string `json:"client_secret"`
}
