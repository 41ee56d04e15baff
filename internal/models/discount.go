package models

const (
	PERCENTAGE   = "PERCENTAGE"
	FIXED_AMOUNT = "FIXED_AMOUNT"
)

// Discount is an applied promo as carried inside a cart. Value is a whole
// percentage for PERCENTAGE and minor units for FIXED_AMOUNT. MinimumOrder
// is a subtotal floor in minor units; nil means no floor.
type Discount struct {
	Code         string `json:"code"`
	Type         string `json:"type"`
	Value        int64  `json:"value"`
	MinimumOrder *int64 `json:"minimum_order,omitempty"`
}
