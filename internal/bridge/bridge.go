// Package bridge owns the realtime side of the ordering flow: one long-lived
// transport per logical session, fan-out of validated domain events to
// registered handlers, and query-cache invalidation ahead of every dispatch.
package bridge

import (
	"context"
	"fmt"
	"sync"

	"dinehub/internal/cache"
	"dinehub/internal/logger"
	"dinehub/internal/models"
)

type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// ConnDescriptor identifies one realtime session. Changing any field means
// tearing down and re-establishing the connection.
type ConnDescriptor struct {
	TenantID  string
	Role      models.Role
	TableID   string
	AuthToken string
}

// Transport is an established realtime connection. Reconnection is the
// transport's own responsibility; it reports progress on Status and keeps
// delivering on Events across reconnects. Events is closed only when the
// transport is shut down for good.
type Transport interface {
	Events() <-chan models.DomainEvent
	Status() <-chan Status
	Close() error
}

type TransportFactory func(ConnDescriptor) (Transport, error)

type Handler func(models.DomainEvent)

// Bridge fans domain events out to handlers registered per event kind.
// Handlers belong to the bridge, not to the transport, so a transport-level
// reconnect never requires callers to re-subscribe. One dispatch goroutine
// runs per connection; handlers execute sequentially in arrival order.
type Bridge struct {
	factory TransportFactory
	sink    cache.Invalidator
	logger  *logger.Logger

	mu        sync.Mutex
	status    Status
	desc      *ConnDescriptor
	transport Transport
	handlers  map[models.EventKind][]Handler
	counts    map[models.EventKind]uint64
	onStatus  func(Status)
	done      chan struct{}
}

func New(factory TransportFactory, sink cache.Invalidator, log *logger.Logger) *Bridge {
	return &Bridge{
		factory:  factory,
		sink:     sink,
		logger:   log,
		status:   StatusDisconnected,
		handlers: make(map[models.EventKind][]Handler),
		counts:   make(map[models.EventKind]uint64),
	}
}

// Connect establishes the transport for the descriptor. Calling it again
// with an identical descriptor is a no-op; a different descriptor tears the
// old connection down first. A missing tenant id is reported as a warning
// and leaves the bridge in the error status, since callers may connect
// speculatively before their data has loaded.
func (b *Bridge) Connect(desc ConnDescriptor) {
	if desc.TenantID == "" {
		b.logger.Warn("BRIDGE", "Connect called without a tenant id, ignoring")
		b.setStatus(StatusError)
		return
	}

	b.mu.Lock()
	if b.desc != nil && *b.desc == desc && (b.status == StatusConnected || b.status == StatusConnecting) {
		b.mu.Unlock()
		return
	}
	b.teardownLocked()
	b.desc = &desc
	b.mu.Unlock()

	b.setStatus(StatusConnecting)

	transport, err := b.factory(desc)
	if err != nil {
		b.logger.Error("BRIDGE", fmt.Sprintf("Transport connect failed for tenant %s: %v", desc.TenantID, err))
		// Registered listeners stay in place; a later Connect resumes
		// delivering to the same handlers.
		b.setStatus(StatusError)
		return
	}

	done := make(chan struct{})
	b.mu.Lock()
	b.transport = transport
	b.done = done
	b.mu.Unlock()

	go b.dispatchLoop(transport, done)
	b.logger.Info("BRIDGE", fmt.Sprintf("Realtime session opened for tenant %s as %s", desc.TenantID, desc.Role))
}

// Disconnect tears the transport down, drops all registered listeners and
// resets the status. Safe to call at any point, including mid-handshake or
// when never connected.
func (b *Bridge) Disconnect() {
	b.mu.Lock()
	b.teardownLocked()
	b.desc = nil
	b.handlers = make(map[models.EventKind][]Handler)
	b.mu.Unlock()

	b.setStatus(StatusDisconnected)
}

func (b *Bridge) teardownLocked() {
	if b.transport != nil {
		_ = b.transport.Close()
		b.transport = nil
	}
	if b.done != nil {
		close(b.done)
		b.done = nil
	}
}

// On registers a handler for an event kind. Multiple handlers per kind are
// invoked in registration order.
func (b *Bridge) On(kind models.EventKind, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], handler)
}

// Status returns the current connection status.
func (b *Bridge) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// OnStatusChange sets a callback invoked on every status transition.
func (b *Bridge) OnStatusChange(fn func(Status)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onStatus = fn
}

// Count returns how many events of the kind were received on this bridge.
// The counter never decreases; UI badges poll it.
func (b *Bridge) Count(kind models.EventKind) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts[kind]
}

func (b *Bridge) setStatus(status Status) {
	b.mu.Lock()
	if b.status == status {
		b.mu.Unlock()
		return
	}
	b.status = status
	fn := b.onStatus
	b.mu.Unlock()

	if fn != nil {
		fn(status)
	}
}

func (b *Bridge) dispatchLoop(transport Transport, done chan struct{}) {
	events := transport.Events()
	statuses := transport.Status()

	for {
		// A teardown closes both done and, with the Kafka transport, the
		// events channel. Check done on its own first so a torn-down loop
		// exits here instead of racing into the closed-events branch.
		select {
		case <-done:
			return
		default:
		}

		select {
		case evt, ok := <-events:
			if !ok {
				// Only the transport that is still current may report its
				// death. A loop whose transport was replaced or torn down
				// must not stamp error over the bridge's real status.
				if b.isCurrent(transport) {
					b.setStatus(StatusError)
				}
				return
			}
			b.dispatch(evt)
		case status, ok := <-statuses:
			if !ok {
				statuses = nil
				continue
			}
			// The bridge reflects whatever the transport reports; it
			// enforces no timeout of its own.
			if b.isCurrent(transport) {
				b.setStatus(status)
			}
		case <-done:
			return
		}
	}
}

// isCurrent reports whether the transport still belongs to the live
// connection. teardownLocked clears b.transport before closing done, so a
// stale dispatch loop always observes false here.
func (b *Bridge) isCurrent(transport Transport) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.transport == transport
}

func (b *Bridge) dispatch(evt models.DomainEvent) {
	b.mu.Lock()
	b.counts[evt.Kind]++
	handlers := make([]Handler, len(b.handlers[evt.Kind]))
	copy(handlers, b.handlers[evt.Kind])
	b.mu.Unlock()

	entity := evt.OrderID
	if entity == "" {
		entity = evt.TableID
	}
	b.logger.LogEvent(string(evt.Kind), entity, fmt.Sprintf("dispatching to %d handler(s)", len(handlers)))

	// Cache invalidation runs before user handlers so they can assume the
	// cache already reflects the freshness hint. The refetch itself is
	// asynchronous on the consumer side.
	keys := invalidationKeys(evt)
	if len(keys) > 0 {
		if err := b.sink.Invalidate(context.Background(), keys...); err != nil {
			b.logger.Error("BRIDGE", fmt.Sprintf("Cache invalidation failed for %s: %v", evt.Kind, err))
		}
	}

	for _, handler := range handlers {
		handler(evt)
	}
}

// invalidationKeys is the fixed mapping from event kind to stale cache keys.
// Invalidation for an entity nothing tracks locally is a harmless no-op.
func invalidationKeys(evt models.DomainEvent) []string {
	switch evt.Kind {
	case models.OrderCreated, models.PaymentCompleted:
		return []string{
			cache.Key(cache.KeyOrderTracking, evt.OrderID),
			cache.Key(cache.KeyOrders),
			cache.Key(cache.KeyCart),
		}
	case models.OrderStatusChanged:
		return []string{
			cache.Key(cache.KeyOrderTracking, evt.OrderID),
			cache.Key(cache.KeyOrders),
		}
	case models.TableStatusChanged:
		return []string{
			cache.Key(cache.KeyTablesOverview),
			cache.Key(cache.KeyTables),
		}
	default:
		return nil
	}
}
