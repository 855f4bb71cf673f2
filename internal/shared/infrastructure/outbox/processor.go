package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/grim/pkg/observability"
	"github.com/google/uuid"
)

// RoutingKeyCommitFailed is published when a commit is dead-lettered.
const RoutingKeyCommitFailed = "sync.commit.failed"

// maxBackoffShift caps the exponent so the duration multiplication cannot overflow.
const maxBackoffShift = 30

var ErrDrainTimeout = errors.New("commit queue not drained")

// Applier performs the remote side of a commit.
type Applier interface {
	Apply(ctx context.Context, msg *Message) error
}

// ApplierFunc adapts a function to Applier.
type ApplierFunc func(ctx context.Context, msg *Message) error

func (f ApplierFunc) Apply(ctx context.Context, msg *Message) error { return f(ctx, msg) }

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. The message is dead-lettered at once.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// CommitFailure is the payload of a sync.commit.failed event.
type CommitFailure struct {
	MessageID     int64     `json:"message_id"`
	EventID       uuid.UUID `json:"event_id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	AggregateType string    `json:"aggregate_type"`
	AggregateID   uuid.UUID `json:"aggregate_id"`
	RoutingKey    string    `json:"routing_key"`
	Attempts      int       `json:"attempts"`
	Reason        string    `json:"reason"`
	FailedAt      time.Time `json:"failed_at"`
}

// ProcessorConfig holds configuration for the commit processor.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration

	// Retention is how long applied commits are kept before the cleanup
	// sweep drops them. CleanupInterval of zero disables the sweep.
	Retention       time.Duration
	CleanupInterval time.Duration
}

// DefaultProcessorConfig returns sensible defaults.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     100 * time.Millisecond,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: 1 * time.Second,
		RetryBackoffMax:  1 * time.Minute,
		Retention:        10 * time.Minute,
		CleanupInterval:  time.Minute,
	}
}

// Processor drains the commit queue against the remote store. Commits for the
// same aggregate are applied strictly in enqueue order: while one waits for a
// retry, later ones for that aggregate wait too. Commits for different
// aggregates do not block each other.
type Processor struct {
	repo      Repository
	applier   Applier
	publisher eventbus.Publisher
	metrics   observability.Metrics
	config    ProcessorConfig
	logger    *slog.Logger
	now       func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	running  bool
	mu       sync.Mutex

	// batchMu serialises batches between the poll loop and Drain.
	batchMu sync.Mutex

	statsMu sync.Mutex
	stats   Stats
}

// NewProcessor creates a new commit processor. publisher receives commit
// outcomes and may be nil.
func NewProcessor(repo Repository, applier Applier, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = eventbus.NewNoopPublisher(logger)
	}
	return &Processor{
		repo:      repo,
		applier:   applier,
		publisher: publisher,
		metrics:   observability.NoopMetrics{},
		config:    config,
		logger:    logger,
		now:       time.Now,
		stopChan:  make(chan struct{}),
	}
}

// WithMetrics sets the metrics sink.
func (p *Processor) WithMetrics(m observability.Metrics) *Processor {
	if m != nil {
		p.metrics = m
	}
	return p
}

// Enqueue stores a commit for later processing.
func (p *Processor) Enqueue(ctx context.Context, msg *Message) error {
	if err := p.repo.Save(ctx, msg); err != nil {
		return fmt.Errorf("enqueue commit: %w", err)
	}
	p.logger.Debug("commit enqueued",
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"aggregate_id", msg.AggregateID,
	)
	return nil
}

// Start begins the polling loop in a goroutine.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(ctx)

	p.logger.Info("commit processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
		"max_retries", p.config.MaxRetries,
	)

	return nil
}

// Stop gracefully stops the processor. Pending commits stay queued.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("commit processor stopped")
}

// IsRunning returns true if the processor is running.
func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Processor) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	var cleanup <-chan time.Time
	if p.config.CleanupInterval > 0 {
		cleanupTicker := time.NewTicker(p.config.CleanupInterval)
		defer cleanupTicker.Stop()
		cleanup = cleanupTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				p.logger.Error("failed to process commit batch", "error", err)
			}
		case <-cleanup:
			if _, err := p.Cleanup(ctx); err != nil {
				p.logger.Error("commit queue cleanup failed", "error", err)
			}
		}
	}
}

// Cleanup drops applied commits older than the retention period and
// returns how many were removed.
func (p *Processor) Cleanup(ctx context.Context) (int64, error) {
	deleted, err := p.repo.DeleteApplied(ctx, p.config.Retention)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		p.logger.Debug("commit queue cleanup completed", "deleted", deleted, "retention", p.config.Retention)
	}
	return deleted, nil
}

func (p *Processor) processBatch(ctx context.Context) error {
	p.batchMu.Lock()
	defer p.batchMu.Unlock()

	messages, err := p.repo.GetPending(ctx, p.config.BatchSize)
	if err != nil {
		p.recordError(err)
		return err
	}

	p.recordProcessed(messages)

	now := p.now()
	blocked := make(map[uuid.UUID]bool)
	for _, msg := range messages {
		if blocked[msg.AggregateID] {
			continue
		}
		if !msg.ReadyAt(now) {
			blocked[msg.AggregateID] = true
			continue
		}

		if err := p.applier.Apply(ctx, msg); err != nil {
			blocked[msg.AggregateID] = true
			p.handleFailure(ctx, msg, err)
			continue
		}

		if err := p.repo.MarkApplied(ctx, msg.ID); err != nil {
			// Still pending, so it runs again next batch. Nothing after it
			// for this aggregate may overtake it.
			blocked[msg.AggregateID] = true
			p.logger.Error("failed to mark commit as applied",
				"id", msg.ID,
				"event_id", msg.EventID,
				"error", err,
			)
			continue
		}
		p.recordApplied(msg)
		p.publishOutcome(ctx, msg.RoutingKey, msg, msg.Payload)
	}

	return nil
}

func (p *Processor) handleFailure(ctx context.Context, msg *Message, err error) {
	p.logger.Warn("remote commit failed",
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"aggregate_id", msg.AggregateID,
		"attempt", msg.RetryCount+1,
		"correlation_id", msg.Metadata.CorrelationID,
		"user_id", msg.OwnerID,
		"error", err,
	)
	errStr := err.Error()

	if IsPermanent(err) || p.shouldDeadLetter(msg) {
		p.recordDead(err)
		if markErr := p.repo.MarkDead(ctx, msg.ID, errStr); markErr != nil {
			p.logger.Error("failed to mark commit as dead-lettered",
				"id", msg.ID,
				"error", markErr,
			)
			return
		}
		p.logger.Error("commit dead-lettered",
			"id", msg.ID,
			"routing_key", msg.RoutingKey,
			"aggregate_id", msg.AggregateID,
			"reason", errStr,
		)
		failure := CommitFailure{
			MessageID:     msg.ID,
			EventID:       msg.EventID,
			OwnerID:       msg.OwnerID,
			AggregateType: msg.AggregateType,
			AggregateID:   msg.AggregateID,
			RoutingKey:    msg.RoutingKey,
			Attempts:      msg.RetryCount + 1,
			Reason:        errStr,
			FailedAt:      p.now().UTC(),
		}
		payload, mErr := json.Marshal(failure)
		if mErr != nil {
			p.logger.Error("failed to encode commit failure", "id", msg.ID, "error", mErr)
			return
		}
		p.publishOutcome(ctx, RoutingKeyCommitFailed, msg, payload)
		return
	}

	p.recordFailed(err)
	nextRetryAt := p.now().Add(p.retryBackoff(msg.RetryCount + 1))
	if markErr := p.repo.MarkFailed(ctx, msg.ID, errStr, nextRetryAt); markErr != nil {
		p.logger.Error("failed to mark commit as failed",
			"id", msg.ID,
			"error", markErr,
		)
	}
}

// publishOutcome wraps payload in the bus envelope. Publish errors are logged
// and never affect the commit state.
func (p *Processor) publishOutcome(ctx context.Context, routingKey string, msg *Message, payload json.RawMessage) {
	envelope := eventbus.ConsumedEvent{
		EventID:       msg.EventID,
		AggregateID:   msg.AggregateID,
		AggregateType: msg.AggregateType,
		RoutingKey:    routingKey,
		OccurredAt:    msg.CreatedAt,
		Payload:       payload,
		Metadata: eventbus.EventMetadata{
			UserID:        msg.OwnerID,
			CorrelationID: uuidString(msg.Metadata.CorrelationID),
			CausationID:   uuidString(msg.Metadata.CausationID),
		},
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		p.logger.Error("failed to encode commit outcome", "id", msg.ID, "error", err)
		return
	}
	if err := p.publisher.Publish(ctx, routingKey, data); err != nil {
		p.logger.Warn("failed to publish commit outcome",
			"id", msg.ID,
			"routing_key", routingKey,
			"error", err,
		)
	}
}

func uuidString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func (p *Processor) shouldDeadLetter(msg *Message) bool {
	if p.config.MaxRetries <= 0 {
		return true
	}
	return msg.RetryCount+1 >= p.config.MaxRetries
}

func (p *Processor) retryBackoff(nextRetryCount int) time.Duration {
	base := p.config.RetryBackoffBase
	if base <= 0 {
		base = time.Second
	}
	max := p.config.RetryBackoffMax
	if max <= 0 {
		max = time.Minute
	}

	backoff := base * time.Duration(convert.ShiftClamped(nextRetryCount-1, maxBackoffShift))
	if backoff > max || backoff <= 0 {
		return max
	}
	return backoff
}

// ProcessOnce processes a single batch synchronously (useful for testing).
func (p *Processor) ProcessOnce(ctx context.Context) error {
	return p.processBatch(ctx)
}

// Pending returns the number of commits not yet applied or dead-lettered.
func (p *Processor) Pending(ctx context.Context) (int, error) {
	msgs, err := p.repo.GetPending(ctx, 0)
	if err != nil {
		return 0, err
	}
	return len(msgs), nil
}

// Drain processes batches until the queue is empty or ctx is done. Commits
// waiting for a retry are waited for, so a short-lived host can exit cleanly.
func (p *Processor) Drain(ctx context.Context) error {
	interval := p.config.PollInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	for {
		n, err := p.Pending(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if err := p.processBatch(ctx); err != nil {
			return err
		}
		if n, err = p.Pending(ctx); err != nil {
			return err
		} else if n == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %d pending: %w", ErrDrainTimeout, n, ctx.Err())
		case <-time.After(interval):
		}
	}
}

// DeadLetters returns the most recent dead-lettered commits.
func (p *Processor) DeadLetters(ctx context.Context, limit int) ([]*Message, error) {
	return p.repo.GetDead(ctx, limit)
}

// Stats returns processor statistics.
type Stats struct {
	IsRunning       bool
	AppliedCount    uint64
	FailedCount     uint64
	DeadCount       uint64
	LagSeconds      float64
	LastError       string
	LastErrorAt     *time.Time
	LastProcessedAt *time.Time
	OldestMessageAt *time.Time
}

// GetStats returns current processor statistics.
func (p *Processor) GetStats() Stats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()

	s := p.stats
	s.IsRunning = p.IsRunning()
	return s
}

func (p *Processor) recordApplied(msg *Message) {
	p.statsMu.Lock()
	p.stats.AppliedCount++
	p.statsMu.Unlock()
	p.metrics.Counter(observability.MetricCommitsApplied, 1, observability.T("aggregate", msg.AggregateType))
}

func (p *Processor) recordFailed(err error) {
	p.statsMu.Lock()
	p.stats.FailedCount++
	now := p.now()
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &now
	p.statsMu.Unlock()
	p.metrics.Counter(observability.MetricCommitsFailed, 1)
}

func (p *Processor) recordDead(err error) {
	p.statsMu.Lock()
	p.stats.DeadCount++
	now := p.now()
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &now
	p.statsMu.Unlock()
	p.metrics.Counter(observability.MetricCommitsDead, 1)
}

func (p *Processor) recordError(err error) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	now := p.now()
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &now
}

func (p *Processor) recordProcessed(messages []*Message) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	now := p.now()
	p.stats.LastProcessedAt = &now
	if len(messages) == 0 {
		p.stats.LagSeconds = 0
		p.stats.OldestMessageAt = nil
		return
	}

	oldest := messages[0].CreatedAt
	for _, msg := range messages[1:] {
		if msg.CreatedAt.Before(oldest) {
			oldest = msg.CreatedAt
		}
	}
	p.stats.OldestMessageAt = &oldest
	p.stats.LagSeconds = now.Sub(oldest).Seconds()
	p.metrics.Gauge(observability.MetricCommitLag, p.stats.LagSeconds)
}
