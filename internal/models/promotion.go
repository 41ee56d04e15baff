package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Promotion struct {
	bun.BaseModel `bun:"table:promotions"`

	ID           string    `bun:"id,pk" json:"id"`
	TenantID     string    `bun:"tenant_id,notnull" json:"tenant_id"`
	Code         string    `bun:"code,unique,notnull" json:"code"`
	Description  string    `bun:"description,nullzero" json:"description,omitempty"`
	Type         string    `bun:"type,notnull" json:"type"`
	Value        int64     `bun:"value,notnull" json:"value"`
	MinimumOrder *int64    `bun:"minimum_order,nullzero" json:"minimum_order,omitempty"`
	MaxUsage     int       `bun:"max_usage,nullzero" json:"max_usage,omitempty"`
	CurrentUsage int       `bun:"current_usage,notnull,default:0" json:"current_usage"`
	Active       bool      `bun:"active,notnull,default:true" json:"active"`
	ActiveFrom   time.Time `bun:"active_from,notnull" json:"active_from"`
	ExpiresAt    time.Time `bun:"expires_at,notnull" json:"expires_at"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// PromoValidationResult is returned by POST /api/checkout/validate-promo.
// DiscountAmount is the server-authoritative amount the client preview must
// reconcile against.
type PromoValidationResult struct {
	Valid          bool   `json:"valid"`
	Code           string `json:"code"`
	Type           string `json:"type,omitempty"`
	Value          int64  `json:"value,omitempty"`
	DiscountAmount int64  `json:"discount_amount,omitempty"`
	MinimumOrder   *int64 `json:"minimum_order,omitempty"`
	Message        string `json:"message,omitempty"`
}
