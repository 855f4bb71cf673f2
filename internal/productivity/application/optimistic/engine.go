// Package optimistic applies board, goal and plan mutations to the local
// store immediately and hands the matching remote writes to the commit
// queue. It also keeps the store in step with the signed-in identity.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	identity "github.com/felixgeelhaar/grim/internal/identity/domain"
	planning "github.com/felixgeelhaar/grim/internal/planning/domain"
	"github.com/felixgeelhaar/grim/internal/productivity/application/store"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/goal"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/internal/shared/domain"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/grim/pkg/observability"
)

var (
	// ErrNoSession is returned by mutations while nobody is signed in.
	ErrNoSession = errors.New("no active session")
	// ErrLoading is returned by mutations while the store is being loaded.
	// The load replaces the store wholesale, so an edit made now would be lost.
	ErrLoading = errors.New("store is still loading")
	// ErrUnknownTask is returned when a mutation names a task the store does not hold.
	ErrUnknownTask = errors.New("task not in store")
	// ErrUnknownGoal is returned when a mutation names a goal the store does not hold.
	ErrUnknownGoal = errors.New("goal not in store")
)

// Queue accepts remote commits. *outbox.Processor satisfies it.
type Queue interface {
	Enqueue(ctx context.Context, msg *outbox.Message) error
}

// Config tunes the engine. Zero values fall back to defaults.
type Config struct {
	// BootstrapTimeout bounds the initial list requests.
	BootstrapTimeout time.Duration
	// FailureBuffer is the capacity of the Failures channel.
	FailureBuffer int
	Schedule      planning.Schedule
	Now           func() time.Time
	NewID         func() uuid.UUID
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		BootstrapTimeout: 30 * time.Second,
		FailureBuffer:    64,
		Schedule:         planning.DefaultSchedule(),
		Now:              time.Now,
		NewID:            uuid.New,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BootstrapTimeout <= 0 {
		c.BootstrapTimeout = d.BootstrapTimeout
	}
	if c.FailureBuffer <= 0 {
		c.FailureBuffer = d.FailureBuffer
	}
	if c.Schedule == nil {
		c.Schedule = d.Schedule
	}
	if c.Now == nil {
		c.Now = d.Now
	}
	if c.NewID == nil {
		c.NewID = d.NewID
	}
	return c
}

// Engine is the single writer of the store.
type Engine struct {
	store   *store.Store
	tasks   task.Gateway
	goals   goal.Gateway
	queue   Queue
	metrics observability.Metrics
	logger  *slog.Logger
	config  Config

	// mu serialises session changes and mutations, so the queue sees
	// commits in the order they were applied locally.
	mu         sync.Mutex
	session    *identity.Session
	generation uint64
	cancelLoad context.CancelFunc
	loaded     chan struct{}

	failures chan Failure
}

// New creates an engine with no active session.
func New(st *store.Store, tasks task.Gateway, goals goal.Gateway, queue Queue, config Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	config = config.withDefaults()

	loaded := make(chan struct{})
	close(loaded)

	return &Engine{
		store:    st,
		tasks:    tasks,
		goals:    goals,
		queue:    queue,
		metrics:  observability.NoopMetrics{},
		logger:   logger,
		config:   config,
		loaded:   loaded,
		failures: make(chan Failure, config.FailureBuffer),
	}
}

// WithMetrics sets the metrics sink.
func (e *Engine) WithMetrics(m observability.Metrics) *Engine {
	if m != nil {
		e.metrics = m
	}
	return e
}

// Store returns the store the engine writes to.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Schedule returns the daily block template used to validate block keys.
func (e *Engine) Schedule() planning.Schedule {
	return e.config.Schedule
}

// Attach follows provider: the current session is applied right away and
// every later change is applied as it is announced. The returned function
// stops following.
func (e *Engine) Attach(provider identity.Provider) func() {
	unsubscribe := provider.OnSessionChange(e.HandleSession)
	e.HandleSession(provider.CurrentSession())
	return unsubscribe
}

// HandleSession reacts to an identity change. A new identity starts a
// bootstrap; nil clears the store; a refresh of the same identity only
// updates the token.
func (e *Engine) HandleSession(s *identity.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if identity.SameIdentity(e.session, s) {
		e.session = s.Clone()
		return
	}

	e.metrics.Counter(observability.MetricSessionChanges, 1, observability.T("signed_in", fmt.Sprint(s != nil)))
	e.generation++
	if e.cancelLoad != nil {
		e.cancelLoad()
		e.cancelLoad = nil
	}
	e.session = s.Clone()

	if s == nil {
		e.logger.Info("session ended, clearing store")
		e.store.Clear()
		done := make(chan struct{})
		close(done)
		e.loaded = done
		return
	}

	e.logger.Info("session started, loading store", "user_id", s.UserID)
	e.store.MarkLoading()

	ctx, cancel := context.WithTimeout(context.Background(), e.config.BootstrapTimeout)
	ctx = observability.WithUserID(ctx, s.UserID.String())
	done := make(chan struct{})
	e.cancelLoad = cancel
	e.loaded = done

	go e.bootstrap(ctx, cancel, e.generation, s.UserID, done)
}

func (e *Engine) bootstrap(ctx context.Context, cancel context.CancelFunc, gen uint64, ownerID uuid.UUID, done chan struct{}) {
	defer close(done)
	defer cancel()

	start := e.config.Now()
	var (
		tasks []task.Task
		goals []goal.Goal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = e.tasks.List(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		goals, err = e.goals.List(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("failed to list goals: %w", err)
		}
		return nil
	})
	err := g.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation {
		e.logger.Debug("discarding superseded bootstrap", "user_id", ownerID)
		return
	}
	e.cancelLoad = nil

	elapsed := e.config.Now().Sub(start)
	e.metrics.Timing(observability.MetricBootstrapDuration, elapsed)
	if err != nil {
		e.metrics.Counter(observability.MetricBootstrapErrors, 1)
		e.logger.Error("bootstrap failed", "user_id", ownerID, "error", err)
		e.store.MarkFailed(err)
		return
	}
	e.store.ReplaceAll(tasks, goals)
	e.logger.Info("store loaded",
		"user_id", ownerID,
		"tasks", len(tasks),
		"goals", len(goals),
		"duration", elapsed,
	)
}

// WaitForLoad blocks until the current bootstrap, if any, has finished and
// returns its error.
func (e *Engine) WaitForLoad(ctx context.Context) error {
	e.mu.Lock()
	loaded := e.loaded
	e.mu.Unlock()

	select {
	case <-loaded:
	case <-ctx.Done():
		return ctx.Err()
	}
	if status, err := e.store.Status(); status == store.StatusFailed {
		return err
	}
	return nil
}

// Session returns a copy of the identity the store belongs to.
func (e *Engine) Session() *identity.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone()
}

// mutate runs apply against the store on behalf of the signed-in user and
// enqueues the events it returns. Callers get ErrNoSession when nobody is
// signed in and ErrLoading until the bootstrap has finished.
func (e *Engine) mutate(ctx context.Context, op string, apply func(owner uuid.UUID, st *store.State) ([]domain.DomainEvent, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		e.reject(op, ErrNoSession)
		return ErrNoSession
	}
	if status, _ := e.store.Status(); status == store.StatusLoading {
		e.reject(op, ErrLoading)
		return ErrLoading
	}
	owner := e.session.UserID

	var events []domain.DomainEvent
	err := e.store.Mutate(func(st *store.State) error {
		var err error
		events, err = apply(owner, st)
		return err
	})
	if err != nil {
		e.reject(op, err)
		return err
	}
	e.metrics.Counter(observability.MetricMutations, 1, observability.T("op", op))

	for _, ev := range events {
		e.enqueue(ctx, owner, ev)
	}
	return nil
}

func (e *Engine) enqueue(ctx context.Context, owner uuid.UUID, ev domain.DomainEvent) {
	msg, err := outbox.NewMessage(owner, ev)
	if err != nil {
		e.logger.Error("failed to encode commit", "routing_key", ev.RoutingKey(), "error", err)
		return
	}
	if id, perr := uuid.Parse(observability.CorrelationIDFromContext(ctx)); perr == nil {
		msg.Metadata.CorrelationID = id
	}
	if err := e.queue.Enqueue(ctx, msg); err != nil {
		// The local change stands; the remote copy will be corrected on the
		// next load.
		e.logger.Error("failed to enqueue commit",
			"routing_key", msg.RoutingKey,
			"aggregate_id", msg.AggregateID,
			"error", err,
		)
	}
}

func (e *Engine) reject(op string, err error) {
	e.metrics.Counter(observability.MetricMutationsDenied, 1, observability.T("op", op))
	e.logger.Debug("mutation rejected", "op", op, "error", err)
}
