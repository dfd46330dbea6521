package pos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	EventOrderCreated   = "order.created"
	EventOrderUpdated   = "order.updated"
	EventOrderVoided    = "order.voided"
	EventOrderDeleted   = "order.deleted"
	EventPaymentCreated = "payment.created"
	EventPaymentUpdated = "payment.updated"
	EventPaymentDeleted = "payment.deleted"
)

// Event is the message broadcast after an aggregate change commits.
type Event struct {
	EventType   string      `json:"event_type"`
	AggregateID int64       `json:"aggregate_id"`
	OrderID     int64       `json:"order_id"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// RedisPublisher fans each event out on "<prefix>:<event type>" and "<prefix>:all".
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

func NewRedisPublisher(client *redis.Client, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = "pos:events"
	}
	return &RedisPublisher{client: client, prefix: prefix}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := fmt.Sprintf("%s:%s", p.prefix, event.EventType)
	if err := p.client.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	if err := p.client.Publish(ctx, p.prefix+":all", eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish to all channel: %w", err)
	}

	return nil
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
