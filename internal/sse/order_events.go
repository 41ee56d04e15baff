package sse

import (
	"context"
	"sync"

	"dinehub/internal/models"
)

// EventEmitter fans realtime domain events out to SSE clients. Staff
// dashboards subscribe per tenant; the customer app subscribes per table.
type EventEmitter struct {
	tenantClients map[string][]chan models.DomainEvent
	tenantMutex   sync.RWMutex

	tableClients map[string][]chan models.DomainEvent
	tableMutex   sync.RWMutex
}

func NewEventEmitter() *EventEmitter {
	return &EventEmitter{
		tenantClients: make(map[string][]chan models.DomainEvent),
		tableClients:  make(map[string][]chan models.DomainEvent),
	}
}

// SubscribeToTenant adds a client receiving every event for the tenant.
// The client is removed when ctx is done.
func (e *EventEmitter) SubscribeToTenant(ctx context.Context, tenantID string) chan models.DomainEvent {
	clientChan := make(chan models.DomainEvent, 10)

	e.tenantMutex.Lock()
	e.tenantClients[tenantID] = append(e.tenantClients[tenantID], clientChan)
	e.tenantMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeTenantClient(tenantID, clientChan)
	}()

	return clientChan
}

// SubscribeToTable adds a client receiving events scoped to one table.
func (e *EventEmitter) SubscribeToTable(ctx context.Context, tableID string) chan models.DomainEvent {
	clientChan := make(chan models.DomainEvent, 10)

	e.tableMutex.Lock()
	e.tableClients[tableID] = append(e.tableClients[tableID], clientChan)
	e.tableMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeTableClient(tableID, clientChan)
	}()

	return clientChan
}

// Emit broadcasts an event to tenant subscribers and, when the event carries
// a table id, to that table's subscribers. Sends never block; a client whose
// buffer is full misses the event and catches up on its next refetch.
func (e *EventEmitter) Emit(evt models.DomainEvent) {
	e.tenantMutex.RLock()
	clients := e.tenantClients[evt.TenantID]
	e.tenantMutex.RUnlock()

	for _, clientChan := range clients {
		select {
		case clientChan <- evt:
		default:
		}
	}

	if evt.TableID == "" {
		return
	}

	e.tableMutex.RLock()
	tableClients := e.tableClients[evt.TableID]
	e.tableMutex.RUnlock()

	for _, clientChan := range tableClients {
		select {
		case clientChan <- evt:
		default:
		}
	}
}

func (e *EventEmitter) removeTenantClient(tenantID string, clientChan chan models.DomainEvent) {
	e.tenantMutex.Lock()
	defer e.tenantMutex.Unlock()

	clients := e.tenantClients[tenantID]
	for i, ch := range clients {
		if ch == clientChan {
			e.tenantClients[tenantID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}
	if len(e.tenantClients[tenantID]) == 0 {
		delete(e.tenantClients, tenantID)
	}
}

func (e *EventEmitter) removeTableClient(tableID string, clientChan chan models.DomainEvent) {
	e.tableMutex.Lock()
	defer e.tableMutex.Unlock()

	clients := e.tableClients[tableID]
	for i, ch := range clients {
		if ch == clientChan {
			e.tableClients[tableID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}
	if len(e.tableClients[tableID]) == 0 {
		delete(e.tableClients, tableID)
	}
}

// TenantClientCount returns how many clients watch a tenant stream.
func (e *EventEmitter) TenantClientCount(tenantID string) int {
	e.tenantMutex.RLock()
	defer e.tenantMutex.RUnlock()
	return len(e.tenantClients[tenantID])
}

// TableClientCount returns how many clients watch a table stream.
func (e *EventEmitter) TableClientCount(tableID string) int {
	e.tableMutex.RLock()
	defer e.tableMutex.RUnlock()
	return len(e.tableClients[tableID])
}
