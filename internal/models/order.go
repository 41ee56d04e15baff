package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	OrderPending   = "pending"
	OrderPreparing = "preparing"
	OrderReady     = "ready"
	OrderServed    = "served"
	OrderCancelled = "cancelled"
)

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	OrderID        string    `bun:"order_id,pk" json:"order_id"`
	TenantID       string    `bun:"tenant_id,notnull" json:"tenant_id"`
	TableID        string    `bun:"table_id" json:"table_id"`
	SessionID      string    `bun:"session_id,notnull" json:"session_id"`
	Status         string    `bun:"status,notnull" json:"status"`
	Subtotal       int64     `bun:"subtotal,notnull" json:"subtotal"`
	DiscountAmount int64     `bun:"discount_amount,notnull" json:"discount_amount"`
	Tax            int64     `bun:"tax,notnull" json:"tax"`
	ServiceCharge  int64     `bun:"service_charge,notnull" json:"service_charge"`
	Total          int64     `bun:"total,notnull" json:"total"`
	PromoCode      string    `bun:"promo_code,nullzero" json:"promo_code,omitempty"`
	Paid           bool      `bun:"paid,notnull,default:false" json:"paid"`
	CreatedAt      time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

type OrderItem struct {
	bun.BaseModel `bun:"table:order_items"`

	ID         string `bun:"id,pk" json:"id"`
	OrderID    string `bun:"order_id,notnull" json:"order_id"`
	MenuItemID string `bun:"menu_item_id,notnull" json:"menu_item_id"`
	Name       string `bun:"name,notnull" json:"name"`
	SizeLabel  string `bun:"size_label,nullzero" json:"size_label,omitempty"`
	Modifiers  string `bun:"modifiers,nullzero" json:"modifiers,omitempty"`
	UnitPrice  int64  `bun:"unit_price,notnull" json:"unit_price"`
	Quantity   int    `bun:"quantity,notnull" json:"quantity"`
	LineTotal  int64  `bun:"line_total,notnull" json:"line_total"`
}

type OrderWithItems struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}
