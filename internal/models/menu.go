package models

import (
	"time"

	"github.com/uptrace/bun"
)

type MenuItem struct {
	bun.BaseModel `bun:"table:menu_items"`

	ID        string    `bun:"id,pk" json:"id"`
	TenantID  string    `bun:"tenant_id,notnull" json:"tenant_id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Category  string    `bun:"category" json:"category"`
	BasePrice int64     `bun:"base_price,notnull" json:"base_price"`
	Available bool      `bun:"available,notnull,default:true" json:"available"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	Sizes     []SizeOption     `bun:"rel:has-many,join:id=menu_item_id" json:"sizes,omitempty"`
	Modifiers []ModifierOption `bun:"rel:has-many,join:id=menu_item_id" json:"modifiers,omitempty"`
}

// SizeOption replaces the base price entirely when selected.
type SizeOption struct {
	bun.BaseModel `bun:"table:menu_item_sizes"`

	ID         string `bun:"id,pk" json:"id"`
	MenuItemID string `bun:"menu_item_id,notnull" json:"menu_item_id"`
	Label      string `bun:"label,notnull" json:"label"`
	Price      int64  `bun:"price,notnull" json:"price"`
}

// ModifierOption is added on top of the unit price when selected.
type ModifierOption struct {
	bun.BaseModel `bun:"table:menu_item_modifiers"`

	ID         string `bun:"id,pk" json:"id"`
	MenuItemID string `bun:"menu_item_id,notnull" json:"menu_item_id"`
	Label      string `bun:"label,notnull" json:"label"`
	PriceDelta int64  `bun:"price_delta,notnull" json:"price_delta"`
}
