package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"dinehub/internal/logger"
	"dinehub/internal/models"

	"github.com/segmentio/kafka-go"
)

// KafkaTransport adapts a Kafka consumer group to the Transport interface.
// Broker reconnection and offset management belong to the reader; this
// transport only surfaces the resulting status transitions.
type KafkaTransport struct {
	reader   *kafka.Reader
	desc     ConnDescriptor
	logger   *logger.Logger
	events   chan models.DomainEvent
	statuses chan Status
	cancel   context.CancelFunc
}

// NewKafkaTransportFactory builds a TransportFactory consuming the given
// topics. Each descriptor gets its own reader so per-session teardown never
// disturbs other sessions.
func NewKafkaTransportFactory(brokers []string, topics []string, groupID string, log *logger.Logger) TransportFactory {
	return func(desc ConnDescriptor) (Transport, error) {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:     brokers,
			GroupTopics: topics,
			GroupID:     fmt.Sprintf("%s-%s-%s", groupID, desc.TenantID, desc.Role),
			MinBytes:    10e3,
			MaxBytes:    10e6,
		})

		ctx, cancel := context.WithCancel(context.Background())
		t := &KafkaTransport{
			reader:   reader,
			desc:     desc,
			logger:   log,
			events:   make(chan models.DomainEvent, 32),
			statuses: make(chan Status, 4),
			cancel:   cancel,
		}
		go t.consume(ctx)
		return t, nil
	}
}

func (t *KafkaTransport) Events() <-chan models.DomainEvent { return t.events }
func (t *KafkaTransport) Status() <-chan Status             { return t.statuses }

func (t *KafkaTransport) Close() error {
	t.cancel()
	return t.reader.Close()
}

func (t *KafkaTransport) consume(ctx context.Context) {
	defer close(t.events)

	t.pushStatus(StatusConnected)
	healthy := true

	for {
		msg, err := t.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// The reader retries on its own; report the outage and keep
			// going so listeners resume after recovery.
			if healthy {
				t.logger.Error("KAFKA", fmt.Sprintf("Read failed for tenant %s: %v", t.desc.TenantID, err))
				t.pushStatus(StatusError)
				healthy = false
			}
			continue
		}

		if !healthy {
			t.pushStatus(StatusConnected)
			healthy = true
		}

		var evt models.DomainEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			t.logger.Warn("KAFKA", fmt.Sprintf("Dropping malformed event on %s: %v", msg.Topic, err))
			continue
		}

		if !t.matches(evt) {
			continue
		}

		select {
		case t.events <- evt:
		case <-ctx.Done():
			return
		}
	}
}

// matches scopes delivery to the descriptor: tenant always, table when the
// session is pinned to one.
func (t *KafkaTransport) matches(evt models.DomainEvent) bool {
	if evt.TenantID != t.desc.TenantID {
		return false
	}
	if t.desc.TableID != "" && evt.TableID != "" && evt.TableID != t.desc.TableID {
		return false
	}
	return true
}

func (t *KafkaTransport) pushStatus(status Status) {
	select {
	case t.statuses <- status:
	default:
	}
}
