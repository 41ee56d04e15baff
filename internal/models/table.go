package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableReserved  = "reserved"
)

type Table struct {
	bun.BaseModel `bun:"table:tables"`

	ID       string `bun:"id,pk" json:"id"`
	TenantID string `bun:"tenant_id,notnull" json:"tenant_id"`
	Number   int    `bun:"number,notnull" json:"number"`
	Seats    int    `bun:"seats,notnull" json:"seats"`
	Status   string `bun:"status,notnull" json:"status"`
}

// TableSession covers the period during which a QR-scanned table is
// actively ordering.
type TableSession struct {
	bun.BaseModel `bun:"table:table_sessions"`

	ID        string    `bun:"id,pk" json:"id"`
	TenantID  string    `bun:"tenant_id,notnull" json:"tenant_id"`
	TableID   string    `bun:"table_id,notnull" json:"table_id"`
	StartedAt time.Time `bun:"started_at,notnull" json:"started_at"`
	EndedAt   time.Time `bun:"ended_at,nullzero" json:"ended_at,omitempty"`
	Active    bool      `bun:"active,notnull,default:true" json:"active"`
}
