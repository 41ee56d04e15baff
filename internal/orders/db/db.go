package db

import (
	"context"

	"dinehub/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- ORDERS ----------------

func (d *DB) CreateOrder(order models.Order, items []models.OrderItem) error {
	ctx := context.Background()
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&order).Exec(ctx); err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&items).Exec(ctx)
		return err
	})
}

func (d *DB) GetOrderByID(id string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("order_id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (d *DB) GetOrderWithItems(id string) (*models.OrderWithItems, error) {
	order, err := d.GetOrderByID(id)
	if err != nil {
		return nil, err
	}

	var items []models.OrderItem
	err = d.Bun.NewSelect().
		Model(&items).
		Where("order_id = ?", id).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}

	return &models.OrderWithItems{Order: *order, Items: items}, nil
}

func (d *DB) UpdateOrder(order models.Order) error {
	_, err := d.Bun.NewUpdate().
		Model(&order).
		Column("status", "paid", "updated_at").
		Where("order_id = ?", order.OrderID).
		Exec(context.Background())
	return err
}

// ListOrdersByTenant returns a tenant's orders, newest first.
func (d *DB) ListOrdersByTenant(tenantID string, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListOrdersBySession returns every order placed during a table session.
func (d *DB) ListOrdersBySession(sessionID string) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return orders, nil
}
