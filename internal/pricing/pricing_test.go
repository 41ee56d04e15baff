package pricing_test

import (
	"testing"

	"dinehub/internal/models"
	"dinehub/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var standardRates = pricing.Rates{TaxBps: 1000, ServiceChargeBps: 500}

func twoLattes() []models.LineItem {
	return []models.LineItem{
		{MenuItemID: "latte", Name: "Latte", BasePrice: 1000, Quantity: 2},
	}
}

func TestCartTotals_NoDiscount(t *testing.T) {
	totals, err := pricing.CartTotals(twoLattes(), nil, standardRates)
	require.NoError(t, err)

	assert.Equal(t, int64(2000), totals.Subtotal)
	assert.Equal(t, int64(200), totals.Tax)
	assert.Equal(t, int64(100), totals.ServiceCharge)
	assert.Equal(t, int64(0), totals.DiscountAmount)
	assert.Equal(t, int64(2300), totals.Total)
}

func TestCartTotals_PercentageDiscount(t *testing.T) {
	discount := &models.Discount{Code: "HALF", Type: models.PERCENTAGE, Value: 50}

	totals, err := pricing.CartTotals(twoLattes(), discount, standardRates)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), totals.DiscountAmount)
	assert.Equal(t, int64(1300), totals.Total)
}

func TestCartTotals_FixedDiscountClampedToSubtotal(t *testing.T) {
	// 100.00 off a 20.00 cart clamps to the subtotal; total keeps the
	// tax and service charge.
	discount := &models.Discount{Code: "BIGOFF", Type: models.FIXED_AMOUNT, Value: 10000}

	totals, err := pricing.CartTotals(twoLattes(), discount, standardRates)
	require.NoError(t, err)

	assert.Equal(t, int64(2000), totals.DiscountAmount)
	assert.Equal(t, int64(300), totals.Total)
	assert.GreaterOrEqual(t, totals.Total, int64(0))
}

func TestLineItemTotal_QuantityMustBePositive(t *testing.T) {
	item := models.LineItem{MenuItemID: "latte", BasePrice: 1000, Quantity: 0}

	_, err := pricing.LineItemTotal(item)
	require.Error(t, err)
	assert.True(t, pricing.IsValidationError(err))

	item.Quantity = -3
	_, err = pricing.LineItemTotal(item)
	assert.True(t, pricing.IsValidationError(err))
}

func TestLineItemTotal_SizeFallsBackToBasePrice(t *testing.T) {
	item := models.LineItem{
		MenuItemID: "latte",
		BasePrice:  1000,
		SizeID:     "L",
		Sizes: []models.SizeOption{
			{ID: "S", Label: "Small", Price: 800},
			{ID: "M", Label: "Medium", Price: 1000},
		},
		Quantity: 1,
	}

	total, err := pricing.LineItemTotal(item)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), total, "unknown size should fall back to base price, not error")
}

func TestLineItemTotal_SizeAndModifiers(t *testing.T) {
	item := models.LineItem{
		MenuItemID: "latte",
		BasePrice:  1000,
		SizeID:     "L",
		Sizes: []models.SizeOption{
			{ID: "L", Label: "Large", Price: 1200},
		},
		ModifierIDs: []string{"oat-milk", "ghost-modifier"},
		Modifiers: []models.ModifierOption{
			{ID: "oat-milk", Label: "Oat milk", PriceDelta: 50},
			{ID: "extra-shot", Label: "Extra shot", PriceDelta: 75},
		},
		Quantity: 3,
	}

	total, err := pricing.LineItemTotal(item)
	require.NoError(t, err)
	// (1200 + 50) x 3; the unknown modifier selection is simply excluded.
	assert.Equal(t, int64(3750), total)
}

func TestCartTotals_Deterministic(t *testing.T) {
	items := []models.LineItem{
		{MenuItemID: "latte", BasePrice: 1050, Quantity: 3},
		{MenuItemID: "cake", BasePrice: 475, Quantity: 1},
	}
	discount := &models.Discount{Code: "TEN", Type: models.PERCENTAGE, Value: 10}

	first, err := pricing.CartTotals(items, discount, standardRates)
	require.NoError(t, err)
	second, err := pricing.CartTotals(items, discount, standardRates)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSubtotal_MonotonicUnderAddAndRemove(t *testing.T) {
	items := []models.LineItem{
		{MenuItemID: "latte", BasePrice: 1000, Quantity: 1},
	}
	before, err := pricing.Subtotal(items)
	require.NoError(t, err)

	items = append(items, models.LineItem{MenuItemID: "cake", BasePrice: 475, Quantity: 2})
	after, err := pricing.Subtotal(items)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, after, before)

	removed, err := pricing.Subtotal(items[:1])
	require.NoError(t, err)
	assert.LessOrEqual(t, removed, after)
}

func TestDiscountAmount_Bounds(t *testing.T) {
	subtotals := []int64{0, 1, 99, 2000, 1_000_000}
	discounts := []*models.Discount{
		nil,
		{Type: models.PERCENTAGE, Value: 0},
		{Type: models.PERCENTAGE, Value: 50},
		{Type: models.PERCENTAGE, Value: 100},
		{Type: models.FIXED_AMOUNT, Value: 0},
		{Type: models.FIXED_AMOUNT, Value: 500},
		{Type: models.FIXED_AMOUNT, Value: 10_000_000},
	}

	for _, subtotal := range subtotals {
		for _, d := range discounts {
			amount, err := pricing.DiscountAmount(subtotal, d)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, amount, int64(0))
			assert.LessOrEqual(t, amount, subtotal)
		}
	}
}

func TestDiscountAmount_RejectsMalformed(t *testing.T) {
	_, err := pricing.DiscountAmount(2000, &models.Discount{Type: models.PERCENTAGE, Value: 150})
	assert.True(t, pricing.IsValidationError(err))

	_, err = pricing.DiscountAmount(2000, &models.Discount{Type: models.FIXED_AMOUNT, Value: -5})
	assert.True(t, pricing.IsValidationError(err))

	_, err = pricing.DiscountAmount(2000, &models.Discount{Type: "BOGO", Value: 1})
	assert.True(t, pricing.IsValidationError(err))
}

func TestMeetsMinimum(t *testing.T) {
	floor := int64(1500)
	d := &models.Discount{Type: models.PERCENTAGE, Value: 10, MinimumOrder: &floor}

	assert.True(t, pricing.MeetsMinimum(2000, d))
	assert.True(t, pricing.MeetsMinimum(1500, d))
	assert.False(t, pricing.MeetsMinimum(1499, d))
	assert.True(t, pricing.MeetsMinimum(0, nil))
	assert.True(t, pricing.MeetsMinimum(0, &models.Discount{Type: models.PERCENTAGE, Value: 10}))
}
