package models

import "time"

// LineItem is one entry in a cart. Prices are resolved at add time from the
// menu catalog and carried in minor units so recomputation never depends on
// catalog lookups.
type LineItem struct {
	MenuItemID  string           `json:"menu_item_id"`
	Name        string           `json:"name"`
	BasePrice   int64            `json:"base_price"`
	SizeID      string           `json:"size_id,omitempty"`
	Sizes       []SizeOption     `json:"sizes,omitempty"`
	ModifierIDs []string         `json:"modifier_ids,omitempty"`
	Modifiers   []ModifierOption `json:"modifiers,omitempty"`
	Quantity    int              `json:"quantity"`
}

// CartTotals holds the derived monetary fields. Callers never set these
// directly; the cart service re-derives them on every mutation.
type CartTotals struct {
	Subtotal       int64 `json:"subtotal"`
	DiscountAmount int64 `json:"discount_amount"`
	Tax            int64 `json:"tax"`
	ServiceCharge  int64 `json:"service_charge"`
	Total          int64 `json:"total"`
}

type Cart struct {
	TenantID  string     `json:"tenant_id"`
	SessionID string     `json:"session_id"`
	TableID   string     `json:"table_id,omitempty"`
	Items     []LineItem `json:"items"`
	Discount  *Discount  `json:"discount,omitempty"`
	Totals    CartTotals `json:"totals"`
	UpdatedAt time.Time  `json:"updated_at"`
}
