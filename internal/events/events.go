// Package events publishes storefront domain events (cart changes, completed
// orders, downloads) to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	CartItemAdded     = "cart.item.added"
	CartItemRemoved   = "cart.item.removed"
	CartCleared       = "cart.cleared"
	OrderCompleted    = "order.completed"
	ProductDownloaded = "product.downloaded"
	UserRegistered    = "user.registered"
)

// Publisher sends one event. key orders events of the same aggregate
// (usually the user id) onto one partition.
type Publisher interface {
	Publish(ctx context.Context, event, key string, payload any) error
	Close() error
}

// Envelope is the JSON value written for every event.
type Envelope struct {
	Event      string    `json:"event"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes each event to the topic "<prefix>.<event>".
type Kafka struct {
	writer messageWriter
	prefix string
	now    func() time.Time
}

func NewKafka(brokers []string, topicPrefix string) *Kafka {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            3,
		BatchTimeout:           10 * time.Millisecond,
	}
	return &Kafka{writer: writer, prefix: topicPrefix, now: time.Now}
}

func (k *Kafka) Topic(event string) string {
	if k.prefix == "" {
		return event
	}
	return k.prefix + "." + event
}

func (k *Kafka) Publish(ctx context.Context, event, key string, payload any) error {
	data, err := json.Marshal(Envelope{Event: event, OccurredAt: k.now().UTC(), Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event, err)
	}

	msg := kafka.Message{
		Topic: k.Topic(event),
		Key:   []byte(key),
		Value: data,
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }
func (Nop) Close() error                                       { return nil }
