package models

import "time"

// EventKind tags the variants of the realtime domain event union. The wire
// names match what the frontend clients subscribe to.
type EventKind string

const (
	OrderCreated       EventKind = "order:new"
	OrderStatusChanged EventKind = "order:status_changed"
	PaymentCompleted   EventKind = "payment:completed"
	TableStatusChanged EventKind = "table:status_changed"
	TableSessionStart  EventKind = "table:session_started"
	TableSessionEnd    EventKind = "table:session_ended"
)

// DomainEvent is a server-pushed notification of a state change. Events are
// immutable after receipt; consumers never mutate them.
type DomainEvent struct {
	Kind       EventKind `json:"kind"`
	TenantID   string    `json:"tenant_id"`
	OrderID    string    `json:"order_id,omitempty"`
	TableID    string    `json:"table_id,omitempty"`
	SessionID  string    `json:"session_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Role identifies which audience a realtime connection serves.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleKitchen  Role = "kitchen"
)
