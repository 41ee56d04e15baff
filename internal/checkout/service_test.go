package checkout_test

import (
	"context"
	"testing"
	"time"

	"dinehub/internal/checkout"
	"dinehub/internal/logger"
	"dinehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPromoStore struct {
	mock.Mock
}

func (m *MockPromoStore) GetPromotionByCode(ctx context.Context, tenantID, code string) (*models.Promotion, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Promotion), args.Error(1)
}

func (m *MockPromoStore) IncrementUsage(ctx context.Context, promoID string) error {
	args := m.Called(ctx, promoID)
	return args.Error(0)
}

func activePromo() *models.Promotion {
	return &models.Promotion{
		ID:         "p1",
		TenantID:   "t1",
		Code:       "HALF",
		Type:       models.PERCENTAGE,
		Value:      50,
		Active:     true,
		ActiveFrom: time.Now().Add(-time.Hour),
		ExpiresAt:  time.Now().Add(time.Hour),
	}
}

func TestValidatePromo_Valid(t *testing.T) {
	store := new(MockPromoStore)
	svc := checkout.NewService(store, logger.NewLogger())

	store.On("GetPromotionByCode", mock.Anything, "t1", "HALF").Return(activePromo(), nil)

	result, err := svc.ValidatePromo(context.Background(), "t1", "HALF", 2000)
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Equal(t, models.PERCENTAGE, result.Type)
	assert.Equal(t, int64(1000), result.DiscountAmount)
	store.AssertExpectations(t)
}

func TestValidatePromo_UnknownCodeIsRejectionNotError(t *testing.T) {
	store := new(MockPromoStore)
	svc := checkout.NewService(store, logger.NewLogger())

	store.On("GetPromotionByCode", mock.Anything, "t1", "NOPE").Return(nil, nil)

	result, err := svc.ValidatePromo(context.Background(), "t1", "NOPE", 2000)
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Equal(t, "Promo code not found", result.Message)
}

func TestValidatePromo_ExpiredAndInactive(t *testing.T) {
	store := new(MockPromoStore)
	svc := checkout.NewService(store, logger.NewLogger())

	expired := activePromo()
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	store.On("GetPromotionByCode", mock.Anything, "t1", "OLD").Return(expired, nil)

	inactive := activePromo()
	inactive.Active = false
	store.On("GetPromotionByCode", mock.Anything, "t1", "OFF").Return(inactive, nil)

	result, err := svc.ValidatePromo(context.Background(), "t1", "OLD", 2000)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Promo code has expired", result.Message)

	result, err = svc.ValidatePromo(context.Background(), "t1", "OFF", 2000)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Promo code is not active", result.Message)
}

func TestValidatePromo_UsageLimit(t *testing.T) {
	store := new(MockPromoStore)
	svc := checkout.NewService(store, logger.NewLogger())

	used := activePromo()
	used.MaxUsage = 10
	used.CurrentUsage = 10
	store.On("GetPromotionByCode", mock.Anything, "t1", "HALF").Return(used, nil)

	result, err := svc.ValidatePromo(context.Background(), "t1", "HALF", 2000)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Promo code usage limit has been reached", result.Message)
}

func TestValidatePromo_MinimumOrder(t *testing.T) {
	store := new(MockPromoStore)
	svc := checkout.NewService(store, logger.NewLogger())

	floor := int64(5000)
	gated := activePromo()
	gated.MinimumOrder = &floor
	store.On("GetPromotionByCode", mock.Anything, "t1", "HALF").Return(gated, nil)

	result, err := svc.ValidatePromo(context.Background(), "t1", "HALF", 2000)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Message, "minimum")
	require.NotNil(t, result.MinimumOrder)
	assert.Equal(t, int64(5000), *result.MinimumOrder)

	// Meets the floor.
	result, err = svc.ValidatePromo(context.Background(), "t1", "HALF", 5000)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, int64(2500), result.DiscountAmount)
}

func TestRedeemPromo(t *testing.T) {
	store := new(MockPromoStore)
	svc := checkout.NewService(store, logger.NewLogger())

	store.On("GetPromotionByCode", mock.Anything, "t1", "HALF").Return(activePromo(), nil)
	store.On("IncrementUsage", mock.Anything, "p1").Return(nil)

	require.NoError(t, svc.RedeemPromo(context.Background(), "t1", "HALF"))
	store.AssertExpectations(t)
}
