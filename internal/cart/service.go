// Package cart owns all cart mutation. Every operation re-derives the
// monetary totals through the pricing engine; nothing outside this package
// writes a derived field.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dinehub/internal/logger"
	"dinehub/internal/models"
	"dinehub/internal/pricing"
)

var ErrLineNotFound = errors.New("line item not found in cart")

// ErrMinimumNotMet rejects a discount at acceptance time with the specific
// floor it missed.
type ErrMinimumNotMet struct {
	Code         string
	MinimumOrder int64
	Subtotal     int64
}

func (e *ErrMinimumNotMet) Error() string {
	return fmt.Sprintf("promo %s requires a minimum order of %d, cart subtotal is %d", e.Code, e.MinimumOrder, e.Subtotal)
}

// Store persists one cart per (tenant, session). Load returns nil for an
// unknown session; the service treats that as an empty cart.
type Store interface {
	Load(ctx context.Context, tenantID, sessionID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, tenantID, sessionID string) error
}

// MutationResult reports the saved cart plus whether the mutation knocked a
// previously applied discount below its minimum-order floor. Callers surface
// that to the user instead of silently keeping or dropping the discount.
type MutationResult struct {
	Cart                  *models.Cart
	DiscountRemoved       bool
	DiscountRemovedReason string
}

type Service struct {
	store  Store
	rates  pricing.Rates
	logger *logger.Logger
}

func NewService(store Store, rates pricing.Rates, log *logger.Logger) *Service {
	return &Service{store: store, rates: rates, logger: log}
}

func (s *Service) Get(ctx context.Context, tenantID, sessionID string) (*models.Cart, error) {
	cart, err := s.load(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem appends a line item, merging with an existing line that has the
// same menu item, size and modifier selection.
func (s *Service) AddItem(ctx context.Context, tenantID, sessionID string, item models.LineItem) (*MutationResult, error) {
	if _, err := pricing.LineItemTotal(item); err != nil {
		return nil, err
	}

	return s.mutate(ctx, tenantID, sessionID, func(cart *models.Cart) error {
		for i := range cart.Items {
			if sameSelection(cart.Items[i], item) {
				cart.Items[i].Quantity += item.Quantity
				return nil
			}
		}
		cart.Items = append(cart.Items, item)
		return nil
	})
}

// UpdateQuantity sets the quantity of the line identified by menu item, size
// and modifier selection, the same identity AddItem merges on. A non-positive
// quantity is rejected, not treated as removal.
func (s *Service) UpdateQuantity(ctx context.Context, tenantID, sessionID, menuItemID, sizeID string, modifierIDs []string, quantity int) (*MutationResult, error) {
	if quantity <= 0 {
		return nil, &pricing.ValidationError{Field: "quantity", Reason: fmt.Sprintf("must be a positive integer, got %d", quantity)}
	}

	target := models.LineItem{MenuItemID: menuItemID, SizeID: sizeID, ModifierIDs: modifierIDs}
	return s.mutate(ctx, tenantID, sessionID, func(cart *models.Cart) error {
		for i := range cart.Items {
			if sameSelection(cart.Items[i], target) {
				cart.Items[i].Quantity = quantity
				return nil
			}
		}
		return ErrLineNotFound
	})
}

func (s *Service) RemoveItem(ctx context.Context, tenantID, sessionID, menuItemID, sizeID string, modifierIDs []string) (*MutationResult, error) {
	target := models.LineItem{MenuItemID: menuItemID, SizeID: sizeID, ModifierIDs: modifierIDs}
	return s.mutate(ctx, tenantID, sessionID, func(cart *models.Cart) error {
		for i := range cart.Items {
			if sameSelection(cart.Items[i], target) {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
				return nil
			}
		}
		return ErrLineNotFound
	})
}

// Clear empties the cart and drops any applied discount. Used on checkout
// completion and explicit clear.
func (s *Service) Clear(ctx context.Context, tenantID, sessionID string) (*MutationResult, error) {
	return s.mutate(ctx, tenantID, sessionID, func(cart *models.Cart) error {
		cart.Items = nil
		cart.Discount = nil
		return nil
	})
}

// ApplyDiscount validates the discount against the current subtotal and
// attaches it. The minimum-order floor is enforced here, at acceptance time;
// later mutations re-check it (see mutate).
func (s *Service) ApplyDiscount(ctx context.Context, tenantID, sessionID string, discount models.Discount) (*MutationResult, error) {
	cart, err := s.load(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	subtotal, err := pricing.Subtotal(cart.Items)
	if err != nil {
		return nil, err
	}
	if _, err := pricing.DiscountAmount(subtotal, &discount); err != nil {
		return nil, err
	}
	if !pricing.MeetsMinimum(subtotal, &discount) {
		return nil, &ErrMinimumNotMet{Code: discount.Code, MinimumOrder: *discount.MinimumOrder, Subtotal: subtotal}
	}

	return s.mutate(ctx, tenantID, sessionID, func(cart *models.Cart) error {
		cart.Discount = &discount
		return nil
	})
}

func (s *Service) RemoveDiscount(ctx context.Context, tenantID, sessionID string) (*MutationResult, error) {
	return s.mutate(ctx, tenantID, sessionID, func(cart *models.Cart) error {
		cart.Discount = nil
		return nil
	})
}

func (s *Service) load(ctx context.Context, tenantID, sessionID string) (*models.Cart, error) {
	cart, err := s.store.Load(ctx, tenantID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart for session %s: %w", sessionID, err)
	}
	if cart == nil {
		cart = &models.Cart{TenantID: tenantID, SessionID: sessionID}
	}
	return cart, nil
}

func (s *Service) mutate(ctx context.Context, tenantID, sessionID string, apply func(*models.Cart) error) (*MutationResult, error) {
	cart, err := s.load(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	if err := apply(cart); err != nil {
		return nil, err
	}

	result := &MutationResult{Cart: cart}

	// Re-validate an applied discount after every mutation: if the subtotal
	// dropped below the floor the discount is removed and the caller is
	// told, rather than a stale discount silently staying priced in.
	if cart.Discount != nil {
		subtotal, err := pricing.Subtotal(cart.Items)
		if err != nil {
			return nil, err
		}
		if !pricing.MeetsMinimum(subtotal, cart.Discount) {
			result.DiscountRemoved = true
			result.DiscountRemovedReason = fmt.Sprintf("promo %s requires a minimum order of %d", cart.Discount.Code, *cart.Discount.MinimumOrder)
			s.logger.Warn("CART", fmt.Sprintf("Discount %s removed from session %s: subtotal %d below minimum %d",
				cart.Discount.Code, sessionID, subtotal, *cart.Discount.MinimumOrder))
			cart.Discount = nil
		}
	}

	totals, err := pricing.CartTotals(cart.Items, cart.Discount, s.rates)
	if err != nil {
		return nil, err
	}
	cart.Totals = models.CartTotals{
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.DiscountAmount,
		Tax:            totals.Tax,
		ServiceCharge:  totals.ServiceCharge,
		Total:          totals.Total,
	}
	cart.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart for session %s: %w", sessionID, err)
	}
	return result, nil
}

func sameSelection(a, b models.LineItem) bool {
	if a.MenuItemID != b.MenuItemID || a.SizeID != b.SizeID {
		return false
	}
	if len(a.ModifierIDs) != len(b.ModifierIDs) {
		return false
	}
	for i := range a.ModifierIDs {
		if a.ModifierIDs[i] != b.ModifierIDs[i] {
			return false
		}
	}
	return true
}
