package checkout

import (
	"context"
	"database/sql"
	"errors"

	"dinehub/internal/models"

	"github.com/uptrace/bun"
)

// DB is the bun-backed promotions store.
type DB struct {
	Bun *bun.DB
}

func (d *DB) GetPromotionByCode(ctx context.Context, tenantID, code string) (*models.Promotion, error) {
	var promo models.Promotion
	err := d.Bun.NewSelect().
		Model(&promo).
		Where("tenant_id = ?", tenantID).
		Where("code = ?", code).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func (d *DB) IncrementUsage(ctx context.Context, promoID string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Promotion)(nil)).
		Set("current_usage = current_usage + 1").
		Where("id = ?", promoID).
		Exec(ctx)
	return err
}
