package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"dinehub/internal/logger"
	"dinehub/internal/models"

	"github.com/segmentio/kafka-go"
)

// Producer publishes domain events. One writer handles all topics; the
// topic is picked per message from the event kind.
type Producer struct {
	writer *kafka.Writer
	topics TopicRouter
	logger *logger.Logger
}

// TopicRouter maps an event kind to its Kafka topic.
type TopicRouter struct {
	OrderEvents   string
	TableEvents   string
	PaymentEvents string
}

func (r TopicRouter) TopicFor(kind models.EventKind) string {
	switch kind {
	case models.OrderCreated, models.OrderStatusChanged:
		return r.OrderEvents
	case models.PaymentCompleted:
		return r.PaymentEvents
	default:
		return r.TableEvents
	}
}

// Topics lists every topic the router can publish to.
func (r TopicRouter) Topics() []string {
	return []string{r.OrderEvents, r.TableEvents, r.PaymentEvents}
}

func NewProducer(brokers []string, topics TopicRouter, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.Hash{},
	}
	return &Producer{writer: writer, topics: topics, logger: log}
}

// PublishEvent writes a domain event to its topic, keyed by the entity id
// so events for one entity keep their order within a partition.
func (p *Producer) PublishEvent(ctx context.Context, evt models.DomainEvent) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", evt.Kind, err)
	}

	key := evt.OrderID
	if key == "" {
		key = evt.TableID
	}

	topic := p.topics.TopicFor(evt.Kind)
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", evt.Kind, topic, err)
	}

	p.logger.LogKafka("PUBLISH", topic, string(evt.Kind)+" "+key)
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
