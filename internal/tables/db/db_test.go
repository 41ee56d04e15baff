package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"dinehub/internal/models"
	"dinehub/internal/tables/db"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	for _, model := range []interface{}{(*models.Table)(nil), (*models.TableSession)(nil)} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		if err != nil {
			t.Fatalf("Failed to create table for %T: %v", model, err)
		}
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func seedTables(t *testing.T, bunDB *bun.DB) {
	floor := []models.Table{
		{ID: "tbl-1", TenantID: "t1", Number: 1, Seats: 2, Status: models.TableAvailable},
		{ID: "tbl-2", TenantID: "t1", Number: 2, Seats: 4, Status: models.TableOccupied},
		{ID: "tbl-9", TenantID: "t2", Number: 1, Seats: 4, Status: models.TableAvailable},
	}
	_, err := bunDB.NewInsert().Model(&floor).Exec(context.Background())
	assert.NoError(t, err)
}

func TestGetAndListTables(t *testing.T) {
	tableDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	seedTables(t, bunDB)

	table, err := tableDB.GetTableByID("tbl-1")
	assert.NoError(t, err)
	assert.Equal(t, models.TableAvailable, table.Status)

	_, err = tableDB.GetTableByID("missing")
	assert.Error(t, err)

	list, err := tableDB.ListTablesByTenant("t1")
	assert.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Number)
}

func TestUpdateTableStatus(t *testing.T) {
	tableDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	seedTables(t, bunDB)

	err := tableDB.UpdateTableStatus("tbl-1", models.TableReserved)
	assert.NoError(t, err)

	table, err := tableDB.GetTableByID("tbl-1")
	assert.NoError(t, err)
	assert.Equal(t, models.TableReserved, table.Status)
}

func TestSessionLifecycle(t *testing.T) {
	tableDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	seedTables(t, bunDB)

	// No open session yet.
	session, err := tableDB.GetActiveSession("tbl-1")
	assert.NoError(t, err)
	assert.Nil(t, session)

	created := models.TableSession{
		ID:        uuid.New().String(),
		TenantID:  "t1",
		TableID:   "tbl-1",
		StartedAt: time.Now(),
		Active:    true,
	}
	err = tableDB.CreateSession(created)
	assert.NoError(t, err)

	session, err = tableDB.GetActiveSession("tbl-1")
	assert.NoError(t, err)
	assert.NotNil(t, session)
	assert.Equal(t, created.ID, session.ID)

	err = tableDB.CloseSession(created.ID, time.Now())
	assert.NoError(t, err)

	session, err = tableDB.GetActiveSession("tbl-1")
	assert.NoError(t, err)
	assert.Nil(t, session)
}
