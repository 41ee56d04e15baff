package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dinehub/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- TABLES ----------------

func (d *DB) GetTableByID(id string) (*models.Table, error) {
	var table models.Table
	err := d.Bun.NewSelect().
		Model(&table).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (d *DB) ListTablesByTenant(tenantID string) ([]models.Table, error) {
	var tables []models.Table
	err := d.Bun.NewSelect().
		Model(&tables).
		Where("tenant_id = ?", tenantID).
		Order("number ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (d *DB) UpdateTableStatus(id, status string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Table)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// ---------------- SESSIONS ----------------

func (d *DB) CreateSession(session models.TableSession) error {
	_, err := d.Bun.NewInsert().
		Model(&session).
		Exec(context.Background())
	return err
}

// GetActiveSession returns nil when the table has no open session.
func (d *DB) GetActiveSession(tableID string) (*models.TableSession, error) {
	var session models.TableSession
	err := d.Bun.NewSelect().
		Model(&session).
		Where("table_id = ?", tableID).
		Where("active = ?", true).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (d *DB) CloseSession(sessionID string, endedAt time.Time) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.TableSession)(nil)).
		Set("active = ?", false).
		Set("ended_at = ?", endedAt).
		Where("id = ?", sessionID).
		Exec(context.Background())
	return err
}
