// Package pricing computes cart monetary totals. Every function here is pure
// and safe to call concurrently; the engine holds no state. The same engine
// runs on order placement, so a client preview and the final charged amount
// are produced by identical arithmetic.
package pricing

import (
	"errors"
	"fmt"

	"dinehub/internal/models"
	"dinehub/internal/money"
)

// ValidationError marks malformed pricing input. Callers correct the input
// and retry; it is never produced for missing size or modifier references.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Rates carries the externally configured tax and service charge rates in
// basis points (1000 = 10%).
type Rates struct {
	TaxBps           int64
	ServiceChargeBps int64
}

// Totals is the derived monetary breakdown of a cart, minor units throughout.
type Totals struct {
	Subtotal       int64
	DiscountAmount int64
	Tax            int64
	ServiceCharge  int64
	Total          int64
}

// LineItemTotal resolves the effective unit price and multiplies by quantity.
//
// A selected size that matches the item's size list replaces the base price;
// a selection that matches nothing falls back to the base price. Selected
// modifier ids not present in the item's modifier list are excluded. Both
// are deliberate permissive policies so a stale menu cache never blocks an
// order.
func LineItemTotal(item models.LineItem) (int64, error) {
	if item.Quantity <= 0 {
		return 0, &ValidationError{Field: "quantity", Reason: fmt.Sprintf("must be a positive integer, got %d", item.Quantity)}
	}

	unit := item.BasePrice
	if item.SizeID != "" {
		for _, size := range item.Sizes {
			if size.ID == item.SizeID {
				unit = size.Price
				break
			}
		}
	}

	for _, selected := range item.ModifierIDs {
		for _, mod := range item.Modifiers {
			if mod.ID == selected {
				unit += mod.PriceDelta
				break
			}
		}
	}

	return unit * int64(item.Quantity), nil
}

// Subtotal sums the line item totals of the cart.
func Subtotal(items []models.LineItem) (int64, error) {
	var subtotal int64
	for _, item := range items {
		lineTotal, err := LineItemTotal(item)
		if err != nil {
			return 0, err
		}
		subtotal += lineTotal
	}
	return subtotal, nil
}

// DiscountAmount computes the amount a discount takes off a subtotal.
//
// The minimumOrder gate belongs to acceptance time: a discount that was
// accepted stays priced here even if the subtotal has since dropped below
// the floor. Re-validation on cart mutation is the cart service's decision,
// not the engine's.
func DiscountAmount(subtotal int64, discount *models.Discount) (int64, error) {
	if discount == nil || subtotal <= 0 {
		return 0, nil
	}

	var amount int64
	switch discount.Type {
	case models.PERCENTAGE:
		if discount.Value < 0 || discount.Value > 100 {
			return 0, &ValidationError{Field: "discount", Reason: fmt.Sprintf("percentage value out of range: %d", discount.Value)}
		}
		amount = money.Percent(subtotal, discount.Value)
	case models.FIXED_AMOUNT:
		if discount.Value < 0 {
			return 0, &ValidationError{Field: "discount", Reason: fmt.Sprintf("negative fixed amount: %d", discount.Value)}
		}
		amount = discount.Value
	default:
		return 0, &ValidationError{Field: "discount", Reason: fmt.Sprintf("unsupported type %q", discount.Type)}
	}

	// A discount can never push the subtotal negative.
	if amount > subtotal {
		amount = subtotal
	}
	return amount, nil
}

// MeetsMinimum reports whether the subtotal satisfies the discount's
// minimum-order floor. Checked when a discount is accepted and again by the
// cart service after mutations.
func MeetsMinimum(subtotal int64, discount *models.Discount) bool {
	if discount == nil || discount.MinimumOrder == nil {
		return true
	}
	return subtotal >= *discount.MinimumOrder
}

// CartTotals derives the full monetary breakdown for a cart. Tax and service
// charge apply to the undiscounted subtotal; the total is floored at zero.
func CartTotals(items []models.LineItem, discount *models.Discount, rates Rates) (Totals, error) {
	subtotal, err := Subtotal(items)
	if err != nil {
		return Totals{}, err
	}

	discountAmount, err := DiscountAmount(subtotal, discount)
	if err != nil {
		return Totals{}, err
	}

	tax := money.ApplyBasisPoints(subtotal, rates.TaxBps)
	serviceCharge := money.ApplyBasisPoints(subtotal, rates.ServiceChargeBps)

	total := subtotal - discountAmount + tax + serviceCharge
	if total < 0 {
		total = 0
	}

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		Tax:            tax,
		ServiceCharge:  serviceCharge,
		Total:          total,
	}, nil
}
