package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/goal"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/pkg/observability"
)

// BreakerConfig configures the circuit breaker around a remote gateway.
type BreakerConfig struct {
	// FailureThreshold trips the breaker after this many consecutive failures.
	FailureThreshold uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32
	// Interval resets the failure counts while closed. Zero never resets.
	Interval time.Duration
}

// DefaultBreakerConfig returns the breaker settings used by the CLI.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		MaxRequests:      1,
	}
}

// Breaker guards remote calls. Row-level outcomes such as a missing row are
// not counted as failures.
type Breaker struct {
	cb      *gobreaker.CircuitBreaker[any]
	metrics observability.Metrics
	name    string
}

// NewBreaker creates a named breaker.
func NewBreaker(name string, cfg BreakerConfig, metrics observability.Metrics, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}

	b := &Breaker{metrics: metrics, name: name}
	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("gateway circuit breaker state changed",
				"gateway", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.Counter(observability.MetricBreakerChanges, 1,
				observability.T("gateway", name), observability.T("state", to.String()))
		},
	})
	return b
}

// State reports the breaker state ("closed", "half-open", "open").
func (b *Breaker) State() string {
	return b.cb.State().String()
}

func (b *Breaker) call(op string, fn func() (any, error)) (any, error) {
	tags := []observability.Tag{observability.T("gateway", b.name), observability.T("op", op)}
	b.metrics.Counter(observability.MetricGatewayCalls, 1, tags...)

	result, err := b.cb.Execute(fn)
	if err != nil {
		b.metrics.Counter(observability.MetricGatewayErrors, 1, tags...)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s %s: %w", b.name, op, ErrUnavailable)
		}
	}
	return result, err
}

func isBreakerSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrGoalNotFound) ||
		errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, context.Canceled)
}

// BreakerTaskGateway wraps a task gateway with a circuit breaker.
type BreakerTaskGateway struct {
	next    task.Gateway
	breaker *Breaker
}

// NewBreakerTaskGateway wraps next.
func NewBreakerTaskGateway(next task.Gateway, breaker *Breaker) *BreakerTaskGateway {
	return &BreakerTaskGateway{next: next, breaker: breaker}
}

var _ task.Gateway = (*BreakerTaskGateway)(nil)

func (g *BreakerTaskGateway) List(ctx context.Context, ownerID uuid.UUID) ([]task.Task, error) {
	res, err := g.breaker.call("list_tasks", func() (any, error) {
		return g.next.List(ctx, ownerID)
	})
	if err != nil {
		return nil, err
	}
	return res.([]task.Task), nil
}

func (g *BreakerTaskGateway) Insert(ctx context.Context, t task.Task) (task.Task, error) {
	res, err := g.breaker.call("insert_task", func() (any, error) {
		return g.next.Insert(ctx, t)
	})
	if err != nil {
		return task.Task{}, err
	}
	return res.(task.Task), nil
}

func (g *BreakerTaskGateway) Update(ctx context.Context, ownerID, id uuid.UUID, patch task.Patch) error {
	_, err := g.breaker.call("update_task", func() (any, error) {
		return nil, g.next.Update(ctx, ownerID, id, patch)
	})
	return err
}

func (g *BreakerTaskGateway) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	_, err := g.breaker.call("delete_task", func() (any, error) {
		return nil, g.next.Delete(ctx, ownerID, id)
	})
	return err
}

// BreakerGoalGateway wraps a goal gateway with a circuit breaker.
type BreakerGoalGateway struct {
	next    goal.Gateway
	breaker *Breaker
}

// NewBreakerGoalGateway wraps next.
func NewBreakerGoalGateway(next goal.Gateway, breaker *Breaker) *BreakerGoalGateway {
	return &BreakerGoalGateway{next: next, breaker: breaker}
}

var _ goal.Gateway = (*BreakerGoalGateway)(nil)

func (g *BreakerGoalGateway) List(ctx context.Context, ownerID uuid.UUID) ([]goal.Goal, error) {
	res, err := g.breaker.call("list_goals", func() (any, error) {
		return g.next.List(ctx, ownerID)
	})
	if err != nil {
		return nil, err
	}
	return res.([]goal.Goal), nil
}

func (g *BreakerGoalGateway) Insert(ctx context.Context, gl goal.Goal) (goal.Goal, error) {
	res, err := g.breaker.call("insert_goal", func() (any, error) {
		return g.next.Insert(ctx, gl)
	})
	if err != nil {
		return goal.Goal{}, err
	}
	return res.(goal.Goal), nil
}

func (g *BreakerGoalGateway) UpdateProgress(ctx context.Context, ownerID, id uuid.UUID, progress int) error {
	_, err := g.breaker.call("update_goal", func() (any, error) {
		return nil, g.next.UpdateProgress(ctx, ownerID, id, progress)
	})
	return err
}

func (g *BreakerGoalGateway) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	_, err := g.breaker.call("delete_goal", func() (any, error) {
		return nil, g.next.Delete(ctx, ownerID, id)
	})
	return err
}
