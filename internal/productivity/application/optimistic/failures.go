package optimistic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/outbox"
)

// Failure reports a commit the remote store never accepted. The local
// change it belongs to is kept.
type Failure struct {
	AggregateType string
	AggregateID   uuid.UUID
	RoutingKey    string
	Attempts      int
	Reason        string
	FailedAt      time.Time
}

func (f Failure) String() string {
	return fmt.Sprintf("%s %s (%s) failed after %d attempt(s): %s",
		f.AggregateType, f.AggregateID, f.RoutingKey, f.Attempts, f.Reason)
}

// Failures delivers commit failures. Delivery never blocks the queue: when
// nobody drains the channel, new failures are logged and dropped.
func (e *Engine) Failures() <-chan Failure {
	return e.failures
}

// FailureConsumer returns the bus consumer that feeds Failures.
func (e *Engine) FailureConsumer() eventbus.EventConsumer {
	return eventbus.NewConsumerFunc(e.handleCommitFailed, outbox.RoutingKeyCommitFailed)
}

func (e *Engine) handleCommitFailed(_ context.Context, event *eventbus.ConsumedEvent) error {
	var cf outbox.CommitFailure
	if err := json.Unmarshal(event.Payload, &cf); err != nil {
		return fmt.Errorf("failed to decode commit failure: %w", err)
	}

	f := Failure{
		AggregateType: cf.AggregateType,
		AggregateID:   cf.AggregateID,
		RoutingKey:    cf.RoutingKey,
		Attempts:      cf.Attempts,
		Reason:        cf.Reason,
		FailedAt:      cf.FailedAt,
	}
	select {
	case e.failures <- f:
	default:
		e.logger.Warn("failure channel full, dropping notification", "failure", f.String())
	}
	return nil
}
