// Package tables manages dine-in table state and QR-scan sessions. Every
// state change is published so staff dashboards update without polling.
package tables

import (
	"context"
	"fmt"
	"time"

	"dinehub/internal/logger"
	"dinehub/internal/models"

	"github.com/google/uuid"
)

type DBLayer interface {
	GetTableByID(id string) (*models.Table, error)
	ListTablesByTenant(tenantID string) ([]models.Table, error)
	UpdateTableStatus(id, status string) error
	CreateSession(session models.TableSession) error
	GetActiveSession(tableID string) (*models.TableSession, error)
	CloseSession(sessionID string, endedAt time.Time) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, evt models.DomainEvent) error
}

type Service struct {
	DB     DBLayer
	Events EventPublisher
	Logger *logger.Logger
}

func NewService(db DBLayer, events EventPublisher, log *logger.Logger) *Service {
	return &Service{DB: db, Events: events, Logger: log}
}

// StartSession opens an ordering session for a scanned table and marks the
// table occupied. Scanning a table that already has an open session joins
// that session instead of opening a second one.
func (s *Service) StartSession(ctx context.Context, tenantID, tableID string) (*models.TableSession, error) {
	table, err := s.DB.GetTableByID(tableID)
	if err != nil {
		return nil, fmt.Errorf("table %s not found: %w", tableID, err)
	}

	existing, err := s.DB.GetActiveSession(tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active session for table %s: %w", tableID, err)
	}
	if existing != nil {
		s.Logger.Info("TABLE", fmt.Sprintf("Table %s already has session %s, joining", tableID, existing.ID))
		return existing, nil
	}

	session := models.TableSession{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		TableID:   tableID,
		StartedAt: time.Now().UTC(),
		Active:    true,
	}
	if err := s.DB.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session for table %s: %w", tableID, err)
	}

	if table.Status != models.TableOccupied {
		if err := s.DB.UpdateTableStatus(tableID, models.TableOccupied); err != nil {
			return nil, fmt.Errorf("failed to mark table %s occupied: %w", tableID, err)
		}
		s.publish(ctx, models.DomainEvent{
			Kind:     models.TableStatusChanged,
			TenantID: tenantID,
			TableID:  tableID,
			Status:   models.TableOccupied,
		})
	}

	s.publish(ctx, models.DomainEvent{
		Kind:      models.TableSessionStart,
		TenantID:  tenantID,
		TableID:   tableID,
		SessionID: session.ID,
	})

	s.Logger.Info("TABLE", fmt.Sprintf("Session %s started on table %s", session.ID, tableID))
	return &session, nil
}

// EndSession closes the table's open session and frees the table. Ending a
// table with no open session is a no-op.
func (s *Service) EndSession(ctx context.Context, tenantID, tableID string) error {
	session, err := s.DB.GetActiveSession(tableID)
	if err != nil {
		return fmt.Errorf("failed to check active session for table %s: %w", tableID, err)
	}
	if session == nil {
		s.Logger.Warn("TABLE", fmt.Sprintf("Table %s has no open session to end", tableID))
		return nil
	}

	if err := s.DB.CloseSession(session.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to close session %s: %w", session.ID, err)
	}
	if err := s.DB.UpdateTableStatus(tableID, models.TableAvailable); err != nil {
		return fmt.Errorf("failed to mark table %s available: %w", tableID, err)
	}

	s.publish(ctx, models.DomainEvent{
		Kind:      models.TableSessionEnd,
		TenantID:  tenantID,
		TableID:   tableID,
		SessionID: session.ID,
	})
	s.publish(ctx, models.DomainEvent{
		Kind:     models.TableStatusChanged,
		TenantID: tenantID,
		TableID:  tableID,
		Status:   models.TableAvailable,
	})

	s.Logger.Info("TABLE", fmt.Sprintf("Session %s ended on table %s", session.ID, tableID))
	return nil
}

// SetStatus is the staff override for table state, used for reservations
// and cleanup.
func (s *Service) SetStatus(ctx context.Context, tenantID, tableID, status string) error {
	switch status {
	case models.TableAvailable, models.TableOccupied, models.TableReserved:
	default:
		return fmt.Errorf("unknown table status: %s", status)
	}

	if _, err := s.DB.GetTableByID(tableID); err != nil {
		return fmt.Errorf("table %s not found: %w", tableID, err)
	}
	if err := s.DB.UpdateTableStatus(tableID, status); err != nil {
		return fmt.Errorf("failed to update table %s: %w", tableID, err)
	}

	s.publish(ctx, models.DomainEvent{
		Kind:     models.TableStatusChanged,
		TenantID: tenantID,
		TableID:  tableID,
		Status:   status,
	})
	return nil
}

func (s *Service) ListTables(tenantID string) ([]models.Table, error) {
	return s.DB.ListTablesByTenant(tenantID)
}

// publish failures are logged, never surfaced: the table state change has
// already committed and dashboards recover on their next refetch.
func (s *Service) publish(ctx context.Context, evt models.DomainEvent) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	if err := s.Events.PublishEvent(ctx, evt); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish %s for table %s: %v", evt.Kind, evt.TableID, err))
	}
}
