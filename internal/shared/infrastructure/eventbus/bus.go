package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ConsumedEvent is the envelope the commit queue publishes for every
// outcome.
type ConsumedEvent struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	RoutingKey    string          `json:"routing_key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
	Metadata      EventMetadata   `json:"metadata,omitempty"`
}

// EventMetadata ties an event back to the mutation that caused it.
type EventMetadata struct {
	UserID        uuid.UUID `json:"user_id,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	CausationID   string    `json:"causation_id,omitempty"`
}

// EventConsumer receives the events whose routing key matches one of its
// patterns. "sync.commit.*" matches by prefix and "*" matches everything.
type EventConsumer interface {
	EventTypes() []string
	Handle(ctx context.Context, event *ConsumedEvent) error
}

// ConsumerFunc adapts a function to EventConsumer.
type ConsumerFunc struct {
	types []string
	fn    func(ctx context.Context, event *ConsumedEvent) error
}

// NewConsumerFunc creates a consumer for routingKeys.
func NewConsumerFunc(fn func(ctx context.Context, event *ConsumedEvent) error, routingKeys ...string) *ConsumerFunc {
	return &ConsumerFunc{types: routingKeys, fn: fn}
}

func (c *ConsumerFunc) EventTypes() []string { return c.types }

func (c *ConsumerFunc) Handle(ctx context.Context, event *ConsumedEvent) error {
	return c.fn(ctx, event)
}

type subscription struct {
	pattern  string
	consumer EventConsumer
}

func (s subscription) matches(routingKey string) bool {
	switch {
	case s.pattern == "*":
		return true
	case strings.HasSuffix(s.pattern, ".*"):
		return strings.HasPrefix(routingKey, strings.TrimSuffix(s.pattern, "*"))
	}
	return s.pattern == routingKey
}

// InProcessEventBus is the Publisher that hands commit outcomes to
// consumers in this process, such as the engine's failure channel. It is
// always wired; a broker publisher runs beside it when configured.
type InProcessEventBus struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

// NewInProcessEventBus creates a bus with no consumers.
func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessEventBus{logger: logger}
}

var _ Publisher = (*InProcessEventBus)(nil)

// RegisterConsumer subscribes consumer to each of its patterns. Consumers
// are called in registration order.
func (b *InProcessEventBus) RegisterConsumer(consumer EventConsumer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range consumer.EventTypes() {
		b.subs = append(b.subs, subscription{pattern: p, consumer: consumer})
	}
}

// Publish decodes the envelope and calls every matching consumer once.
// Decode and consumer errors are logged, never returned, so a failing
// consumer cannot fail the commit that produced the event.
func (b *InProcessEventBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	var event ConsumedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		b.logger.ErrorContext(ctx, "dropping undecodable event", "routing_key", routingKey, "error", err)
		return nil
	}
	if event.RoutingKey == "" {
		event.RoutingKey = routingKey
	}

	if err := b.dispatch(ctx, &event); err != nil {
		b.logger.ErrorContext(ctx, "event consumers failed",
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
			"error", err,
		)
	}
	return nil
}

func (b *InProcessEventBus) dispatch(ctx context.Context, event *ConsumedEvent) error {
	b.mu.RLock()
	var targets []EventConsumer
	for _, s := range b.subs {
		if s.matches(event.RoutingKey) && !containsConsumer(targets, s.consumer) {
			targets = append(targets, s.consumer)
		}
	}
	b.mu.RUnlock()

	var errs []error
	for _, c := range targets {
		if err := c.Handle(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", c, err))
		}
	}
	return errors.Join(errs...)
}

func containsConsumer(list []EventConsumer, c EventConsumer) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}

// Close is a no-op.
func (b *InProcessEventBus) Close() error { return nil }
