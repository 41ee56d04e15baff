// Package checkout validates promo codes against the promotions catalog and
// produces the authoritative discount amount the client preview reconciles
// against.
package checkout

import (
	"context"
	"fmt"
	"time"

	"dinehub/internal/logger"
	"dinehub/internal/models"
	"dinehub/internal/pricing"
)

type PromoStore interface {
	GetPromotionByCode(ctx context.Context, tenantID, code string) (*models.Promotion, error)
	IncrementUsage(ctx context.Context, promoID string) error
}

type Service struct {
	Store  PromoStore
	Logger *logger.Logger
}

func NewService(store PromoStore, log *logger.Logger) *Service {
	return &Service{Store: store, Logger: log}
}

// ValidatePromo checks a code against its window, usage limit and minimum
// order, and computes the discount for the given order total. Every
// rejection carries its specific reason; an unknown code is a rejection,
// not an error.
func (s *Service) ValidatePromo(ctx context.Context, tenantID, code string, orderTotal int64) (*models.PromoValidationResult, error) {
	result := &models.PromoValidationResult{Valid: false, Code: code}

	promo, err := s.Store.GetPromotionByCode(ctx, tenantID, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up promo %s: %w", code, err)
	}
	if promo == nil {
		result.Message = "Promo code not found"
		return result, nil
	}

	if !promo.Active {
		result.Message = "Promo code is not active"
		return result, nil
	}

	now := time.Now()
	if now.Before(promo.ActiveFrom) {
		result.Message = "Promo code is not yet active"
		return result, nil
	}
	if now.After(promo.ExpiresAt) {
		result.Message = "Promo code has expired"
		return result, nil
	}

	if promo.MaxUsage > 0 && promo.CurrentUsage >= promo.MaxUsage {
		result.Message = "Promo code usage limit has been reached"
		return result, nil
	}

	discount := &models.Discount{
		Code:         promo.Code,
		Type:         promo.Type,
		Value:        promo.Value,
		MinimumOrder: promo.MinimumOrder,
	}

	if !pricing.MeetsMinimum(orderTotal, discount) {
		result.MinimumOrder = promo.MinimumOrder
		result.Message = fmt.Sprintf("Order total does not meet the minimum of %d", *promo.MinimumOrder)
		return result, nil
	}

	amount, err := pricing.DiscountAmount(orderTotal, discount)
	if err != nil {
		// A promotion that fails pricing validation is misconfigured
		// catalog data, not a caller mistake.
		s.Logger.Error("CHECKOUT", fmt.Sprintf("Promo %s is misconfigured: %v", code, err))
		result.Message = "Promo code is misconfigured"
		return result, nil
	}

	result.Valid = true
	result.Type = promo.Type
	result.Value = promo.Value
	result.DiscountAmount = amount
	result.MinimumOrder = promo.MinimumOrder

	s.Logger.Info("CHECKOUT", fmt.Sprintf("Promo %s validated for total %d, discount %d", code, orderTotal, amount))
	return result, nil
}

// RedeemPromo bumps the usage counter once an order carrying the code is
// placed.
func (s *Service) RedeemPromo(ctx context.Context, tenantID, code string) error {
	promo, err := s.Store.GetPromotionByCode(ctx, tenantID, code)
	if err != nil {
		return fmt.Errorf("failed to look up promo %s: %w", code, err)
	}
	if promo == nil {
		return fmt.Errorf("promo %s not found", code)
	}
	return s.Store.IncrementUsage(ctx, promo.ID)
}
