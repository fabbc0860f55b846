package events

import (
	"context"
	"fmt"
	"time"

	"darassa/pkg/kafka"
	"darassa/pkg/logger"
	"darassa/pkg/model"
)

const SchemaVersion = "1"

type EventType string

const (
	ItemCreated EventType = "scheduled_item.created"
	ItemUpdated EventType = "scheduled_item.updated"
	ItemDeleted EventType = "scheduled_item.deleted"
)

// ItemEvent is the payload published for every successful write. Item is
// nil for deletions.
type ItemEvent struct {
	Type       EventType            `json:"type"`
	ItemID     string               `json:"item_id"`
	Kind       model.Kind           `json:"kind,omitempty"`
	Item       *model.ScheduledItem `json:"item,omitempty"`
	OccurredAt time.Time            `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event ItemEvent) error
}

// MessageProducer is the part of *kafka.Producer the publisher needs.
type MessageProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaPublisher struct {
	producer MessageProducer
	source   string
}

func NewKafkaPublisher(producer MessageProducer, source string) Publisher {
	return &kafkaPublisher{producer: producer, source: source}
}

// Publish keys messages by item id so every change to one item lands on the
// same partition, in order.
func (p *kafkaPublisher) Publish(ctx context.Context, event ItemEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	msg, err := kafka.NewMessage().
		WithKey(event.ItemID).
		WithEventType(string(event.Type)).
		WithCorrelationID(logger.RequestIDFromContext(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithValue(event).
		BuildE()
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

type nopPublisher struct{}

// NewNopPublisher is used when Kafka is disabled.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, ItemEvent) error {
	return nil
}
