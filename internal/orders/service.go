package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dinehub/internal/logger"
	"dinehub/internal/models"
	"dinehub/internal/pricing"

	"github.com/google/uuid"
)

type DBLayer interface {
	CreateOrder(order models.Order, items []models.OrderItem) error
	GetOrderByID(id string) (*models.Order, error)
	GetOrderWithItems(id string) (*models.OrderWithItems, error)
	UpdateOrder(order models.Order) error
	ListOrdersByTenant(tenantID string, limit int) ([]models.Order, error)
	ListOrdersBySession(sessionID string) ([]models.Order, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, evt models.DomainEvent) error
}

// validTransitions is the order status lattice. Cancellation is allowed
// until the order is served.
var validTransitions = map[string][]string{
	models.OrderPending:   {models.OrderPreparing, models.OrderCancelled},
	models.OrderPreparing: {models.OrderReady, models.OrderCancelled},
	models.OrderReady:     {models.OrderServed, models.OrderCancelled},
}

type Service struct {
	DB     DBLayer
	Events EventPublisher
	Rates  pricing.Rates
	Logger *logger.Logger
}

func NewService(db DBLayer, events EventPublisher, rates pricing.Rates, log *logger.Logger) *Service {
	return &Service{DB: db, Events: events, Rates: rates, Logger: log}
}

// PlaceOrder turns a cart into a persisted order. Totals are recomputed
// here with the same engine that produced the client preview, so the stored
// amounts match what the customer saw; the server remains the source of
// truth for what is eventually charged.
func (s *Service) PlaceOrder(ctx context.Context, cart *models.Cart) (*models.OrderWithItems, error) {
	if cart == nil || len(cart.Items) == 0 {
		return nil, errors.New("cannot place an order from an empty cart")
	}

	totals, err := pricing.CartTotals(cart.Items, cart.Discount, s.Rates)
	if err != nil {
		return nil, fmt.Errorf("failed to price cart for session %s: %w", cart.SessionID, err)
	}

	orderID := uuid.NewString()
	now := time.Now().UTC()

	order := models.Order{
		OrderID:        orderID,
		TenantID:       cart.TenantID,
		TableID:        cart.TableID,
		SessionID:      cart.SessionID,
		Status:         models.OrderPending,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.DiscountAmount,
		Tax:            totals.Tax,
		ServiceCharge:  totals.ServiceCharge,
		Total:          totals.Total,
		CreatedAt:      now,
	}
	if cart.Discount != nil {
		order.PromoCode = cart.Discount.Code
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		lineTotal, err := pricing.LineItemTotal(line)
		if err != nil {
			return nil, err
		}
		items = append(items, models.OrderItem{
			ID:         uuid.NewString(),
			OrderID:    orderID,
			MenuItemID: line.MenuItemID,
			Name:       line.Name,
			SizeLabel:  sizeLabel(line),
			Modifiers:  modifierLabels(line),
			UnitPrice:  lineTotal / int64(line.Quantity),
			Quantity:   line.Quantity,
			LineTotal:  lineTotal,
		})
	}

	if err := s.DB.CreateOrder(order, items); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	s.Logger.LogOrder("PLACE", orderID, fmt.Sprintf("table %s total %d", order.TableID, order.Total))

	evt := models.DomainEvent{
		Kind:       models.OrderCreated,
		TenantID:   order.TenantID,
		OrderID:    orderID,
		TableID:    order.TableID,
		SessionID:  order.SessionID,
		Status:     order.Status,
		OccurredAt: now,
	}
	if err := s.Events.PublishEvent(ctx, evt); err != nil {
		// The order stands even if the realtime notification fails;
		// dashboards degrade to polling.
		s.Logger.Error("ORDER", fmt.Sprintf("Failed to publish order:new for %s: %v", orderID, err))
	}

	return &models.OrderWithItems{Order: order, Items: items}, nil
}

// UpdateStatus advances an order through the status lattice and publishes
// the change.
func (s *Service) UpdateStatus(ctx context.Context, orderID, newStatus string) (*models.Order, error) {
	order, err := s.DB.GetOrderByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("order %s not found: %w", orderID, err)
	}

	if !transitionAllowed(order.Status, newStatus) {
		return nil, fmt.Errorf("cannot move order %s from %s to %s", orderID, order.Status, newStatus)
	}

	order.Status = newStatus
	order.UpdatedAt = time.Now().UTC()
	if err := s.DB.UpdateOrder(*order); err != nil {
		return nil, fmt.Errorf("failed to update order %s: %w", orderID, err)
	}
	s.Logger.LogOrder("STATUS", orderID, newStatus)

	evt := models.DomainEvent{
		Kind:       models.OrderStatusChanged,
		TenantID:   order.TenantID,
		OrderID:    orderID,
		TableID:    order.TableID,
		SessionID:  order.SessionID,
		Status:     newStatus,
		OccurredAt: order.UpdatedAt,
	}
	if err := s.Events.PublishEvent(ctx, evt); err != nil {
		s.Logger.Error("ORDER", fmt.Sprintf("Failed to publish status change for %s: %v", orderID, err))
	}

	return order, nil
}

// MarkPaid flags the order paid and publishes payment:completed. Invoked by
// the payment webhook.
func (s *Service) MarkPaid(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.DB.GetOrderByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("order %s not found: %w", orderID, err)
	}
	if order.Paid {
		return order, nil
	}

	order.Paid = true
	order.UpdatedAt = time.Now().UTC()
	if err := s.DB.UpdateOrder(*order); err != nil {
		return nil, fmt.Errorf("failed to mark order %s paid: %w", orderID, err)
	}
	s.Logger.LogOrder("PAID", orderID, "payment completed")

	evt := models.DomainEvent{
		Kind:       models.PaymentCompleted,
		TenantID:   order.TenantID,
		OrderID:    orderID,
		TableID:    order.TableID,
		SessionID:  order.SessionID,
		OccurredAt: order.UpdatedAt,
	}
	if err := s.Events.PublishEvent(ctx, evt); err != nil {
		s.Logger.Error("ORDER", fmt.Sprintf("Failed to publish payment:completed for %s: %v", orderID, err))
	}

	return order, nil
}

func (s *Service) GetOrder(id string) (*models.OrderWithItems, error) {
	return s.DB.GetOrderWithItems(id)
}

func (s *Service) ListOrders(tenantID string, limit int) ([]models.Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.DB.ListOrdersByTenant(tenantID, limit)
}

func (s *Service) ListSessionOrders(sessionID string) ([]models.Order, error) {
	return s.DB.ListOrdersBySession(sessionID)
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func sizeLabel(line models.LineItem) string {
	for _, size := range line.Sizes {
		if size.ID == line.SizeID {
			return size.Label
		}
	}
	return ""
}

func modifierLabels(line models.LineItem) string {
	var labels []string
	for _, selected := range line.ModifierIDs {
		for _, mod := range line.Modifiers {
			if mod.ID == selected {
				labels = append(labels, mod.Label)
				break
			}
		}
	}
	return strings.Join(labels, ", ")
}
