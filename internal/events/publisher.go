package events

import (
	"context"
	"fmt"

	"vaxbook/pkg/kafka"
	"vaxbook/pkg/logger"
	"vaxbook/pkg/middleware"
)

// Publisher announces booking state changes. Callers treat delivery as best
// effort: the database write has already happened when Publish is called.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

type messageProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	producer messageProducer
	source   string
}

func NewKafkaPublisher(producer messageProducer, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

// Publish keys the message by user id so one user's events stay ordered on a
// single partition.
func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	msg, err := kafka.NewMessage().
		WithKey(evt.UserID).
		WithEventType(evt.Type).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithTimestamp(evt.OccurredAt).
		WithValue(evt).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", evt.Type, err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", evt.Type, err)
	}
	return nil
}

// NoopPublisher drops events. Used when Kafka is disabled.
type NoopPublisher struct {
	log *logger.Logger
}

func NewNoopPublisher(log *logger.Logger) *NoopPublisher {
	return &NoopPublisher{log: log}
}

func (p *NoopPublisher) Publish(ctx context.Context, evt Event) error {
	if p.log != nil {
		p.log.Debug("Event publishing disabled, dropping event", "type", evt.Type, "user_id", evt.UserID)
	}
	return nil
}
