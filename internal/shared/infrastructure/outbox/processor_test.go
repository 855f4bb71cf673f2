package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/grim/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingApplier records applied messages and fails on demand.
type recordingApplier struct {
	mu      sync.Mutex
	applied []*outbox.Message
	failFor map[uuid.UUID]error
}

func newRecordingApplier() *recordingApplier {
	return &recordingApplier{failFor: make(map[uuid.UUID]error)}
}

func (a *recordingApplier) Apply(ctx context.Context, msg *outbox.Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err, ok := a.failFor[msg.AggregateID]; ok {
		return err
	}
	a.applied = append(a.applied, msg)
	return nil
}

func (a *recordingApplier) setFailure(id uuid.UUID, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err == nil {
		delete(a.failFor, id)
		return
	}
	a.failFor[id] = err
}

func (a *recordingApplier) routingKeys() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.applied))
	for _, m := range a.applied {
		out = append(out, m.RoutingKey)
	}
	return out
}

type capturePublisher struct {
	mu     sync.Mutex
	events []eventbus.ConsumedEvent
}

func (p *capturePublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	var e eventbus.ConsumedEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.RoutingKey)
	}
	return out
}

func createTestMessage(aggregateID uuid.UUID, routingKey string) *outbox.Message {
	payload, _ := json.Marshal(map[string]string{"test": "data"})
	return &outbox.Message{
		EventID:       uuid.New(),
		OwnerID:       uuid.New(),
		AggregateType: "Task",
		AggregateID:   aggregateID,
		RoutingKey:    routingKey,
		Payload:       payload,
		CreatedAt:     time.Now(),
	}
}

func fastConfig() outbox.ProcessorConfig {
	return outbox.ProcessorConfig{
		PollInterval:     5 * time.Millisecond,
		BatchSize:        10,
		MaxRetries:       3,
		RetryBackoffBase: time.Millisecond,
		RetryBackoffMax:  5 * time.Millisecond,
	}
}

func TestProcessor_ProcessOnce(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewMemoryRepository()
	applier := newRecordingApplier()
	publisher := &capturePublisher{}
	metrics := observability.NewInMemoryMetrics()
	processor := outbox.NewProcessor(repo, applier, publisher, outbox.DefaultProcessorConfig(), nil).WithMetrics(metrics)

	require.NoError(t, processor.Enqueue(ctx, createTestMessage(uuid.New(), "board.task.created")))
	require.NoError(t, processor.Enqueue(ctx, createTestMessage(uuid.New(), "goals.goal.created")))

	require.NoError(t, processor.ProcessOnce(ctx))

	assert.Equal(t, []string{"board.task.created", "goals.goal.created"}, applier.routingKeys())
	assert.Equal(t, []string{"board.task.created", "goals.goal.created"}, publisher.keys())

	pending, err := processor.Pending(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)

	stats := processor.GetStats()
	assert.Equal(t, uint64(2), stats.AppliedCount)
	assert.NotNil(t, stats.LastProcessedAt)
	assert.Equal(t, int64(2), metrics.GetCounter(observability.MetricCommitsApplied, observability.T("aggregate", "Task")))
}

func TestProcessor_PerAggregateOrdering(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewMemoryRepository()
	applier := newRecordingApplier()
	processor := outbox.NewProcessor(repo, applier, nil, fastConfig(), nil)

	slow := uuid.New()
	other := uuid.New()
	require.NoError(t, processor.Enqueue(ctx, createTestMessage(slow, "board.task.created")))
	require.NoError(t, processor.Enqueue(ctx, createTestMessage(slow, "board.task.updated")))
	require.NoError(t, processor.Enqueue(ctx, createTestMessage(other, "board.task.deleted")))

	applier.setFailure(slow, errors.New("timeout"))
	require.NoError(t, processor.ProcessOnce(ctx))

	assert.Equal(t, []string{"board.task.deleted"}, applier.routingKeys(), "update must wait for the create")

	applier.setFailure(slow, nil)
	require.NoError(t, processor.Drain(ctx))

	assert.Equal(t, []string{"board.task.deleted", "board.task.created", "board.task.updated"}, applier.routingKeys())
	assert.Equal(t, uint64(1), processor.GetStats().FailedCount)
}

// unmarkableRepository fails the next MarkApplied call.
type unmarkableRepository struct {
	*outbox.MemoryRepository
	mu       sync.Mutex
	failNext bool
}

func (r *unmarkableRepository) MarkApplied(ctx context.Context, id int64) error {
	r.mu.Lock()
	fail := r.failNext
	r.failNext = false
	r.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return r.MemoryRepository.MarkApplied(ctx, id)
}

func TestProcessor_UnmarkedCommitKeepsAggregateOrder(t *testing.T) {
	ctx := context.Background()
	repo := &unmarkableRepository{MemoryRepository: outbox.NewMemoryRepository(), failNext: true}
	applier := newRecordingApplier()
	processor := outbox.NewProcessor(repo, applier, nil, fastConfig(), nil)

	id := uuid.New()
	require.NoError(t, processor.Enqueue(ctx, createTestMessage(id, "board.task.created")))
	require.NoError(t, processor.Enqueue(ctx, createTestMessage(id, "board.task.updated")))

	require.NoError(t, processor.ProcessOnce(ctx))
	assert.Equal(t, []string{"board.task.created"}, applier.routingKeys())

	pending, err := processor.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, pending)

	require.NoError(t, processor.ProcessOnce(ctx))
	assert.Equal(t, []string{"board.task.created", "board.task.created", "board.task.updated"}, applier.routingKeys())
}

func TestProcessor_DeadLettersAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewMemoryRepository()
	applier := newRecordingApplier()
	publisher := &capturePublisher{}
	config := fastConfig()
	config.MaxRetries = 1
	processor := outbox.NewProcessor(repo, applier, publisher, config, nil)

	id := uuid.New()
	applier.setFailure(id, errors.New("rejected"))
	require.NoError(t, processor.Enqueue(ctx, createTestMessage(id, "board.task.updated")))

	require.NoError(t, processor.ProcessOnce(ctx))

	assert.Empty(t, applier.routingKeys())
	assert.Equal(t, []string{outbox.RoutingKeyCommitFailed}, publisher.keys())

	var failure outbox.CommitFailure
	require.NoError(t, json.Unmarshal(publisher.events[0].Payload, &failure))
	assert.Equal(t, id, failure.AggregateID)
	assert.Equal(t, "board.task.updated", failure.RoutingKey)
	assert.Equal(t, "rejected", failure.Reason)
	assert.Equal(t, 1, failure.Attempts)

	dead, err := processor.DeadLetters(ctx, 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, uint64(1), processor.GetStats().DeadCount)
}

func TestProcessor_PermanentErrorSkipsRetries(t *testing.T) {
	ctx := context.Background()
	applier := newRecordingApplier()
	processor := outbox.NewProcessor(outbox.NewMemoryRepository(), applier, nil, fastConfig(), nil)

	id := uuid.New()
	applier.setFailure(id, outbox.Permanent(errors.New("not found")))
	require.NoError(t, processor.Enqueue(ctx, createTestMessage(id, "board.task.deleted")))

	require.NoError(t, processor.ProcessOnce(ctx))

	stats := processor.GetStats()
	assert.Equal(t, uint64(1), stats.DeadCount)
	assert.Zero(t, stats.FailedCount)
}

func TestProcessor_DrainTimesOut(t *testing.T) {
	applier := newRecordingApplier()
	config := fastConfig()
	config.MaxRetries = 1000
	processor := outbox.NewProcessor(outbox.NewMemoryRepository(), applier, nil, config, nil)

	id := uuid.New()
	applier.setFailure(id, errors.New("unreachable"))
	require.NoError(t, processor.Enqueue(context.Background(), createTestMessage(id, "board.task.created")))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := processor.Drain(ctx)
	assert.ErrorIs(t, err, outbox.ErrDrainTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProcessor_StartStop(t *testing.T) {
	applier := newRecordingApplier()
	processor := outbox.NewProcessor(outbox.NewMemoryRepository(), applier, nil, fastConfig(), nil)

	require.NoError(t, processor.Start(context.Background()))
	require.NoError(t, processor.Start(context.Background()))
	assert.True(t, processor.IsRunning())
	assert.True(t, processor.GetStats().IsRunning)

	require.NoError(t, processor.Enqueue(context.Background(), createTestMessage(uuid.New(), "board.task.created")))

	assert.Eventually(t, func() bool {
		return len(applier.routingKeys()) == 1
	}, time.Second, 5*time.Millisecond)

	processor.Stop()
	processor.Stop()
	assert.False(t, processor.IsRunning())
}

func TestProcessor_Cleanup(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewMemoryRepository()
	applier := newRecordingApplier()
	config := fastConfig()
	config.Retention = time.Hour
	processor := outbox.NewProcessor(repo, applier, nil, config, nil)

	require.NoError(t, processor.Enqueue(ctx, createTestMessage(uuid.New(), "board.task.created")))
	require.NoError(t, processor.ProcessOnce(ctx))

	deleted, err := processor.Cleanup(ctx)
	require.NoError(t, err)
	assert.Zero(t, deleted, "applied commit is inside the retention period")
	assert.Equal(t, 1, repo.Len())
}

func TestProcessor_RunSweepsAppliedCommits(t *testing.T) {
	repo := outbox.NewMemoryRepository()
	applier := newRecordingApplier()
	config := fastConfig()
	config.Retention = -time.Minute
	config.CleanupInterval = 5 * time.Millisecond
	processor := outbox.NewProcessor(repo, applier, nil, config, nil)

	failing := uuid.New()
	applier.setFailure(failing, outbox.Permanent(errors.New("not found")))
	require.NoError(t, processor.Enqueue(context.Background(), createTestMessage(uuid.New(), "board.task.created")))
	require.NoError(t, processor.Enqueue(context.Background(), createTestMessage(failing, "board.task.deleted")))

	require.NoError(t, processor.Start(context.Background()))
	defer processor.Stop()

	assert.Eventually(t, func() bool {
		return repo.Len() == 1
	}, time.Second, 5*time.Millisecond)

	dead, err := processor.DeadLetters(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, dead, 1, "dead letters are kept")
	assert.Equal(t, failing, dead[0].AggregateID)
}

func TestMemoryRepository_DeleteApplied(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewMemoryRepository()

	applied := createTestMessage(uuid.New(), "board.task.created")
	pending := createTestMessage(uuid.New(), "board.task.created")
	require.NoError(t, repo.Save(ctx, applied))
	require.NoError(t, repo.Save(ctx, pending))
	require.NoError(t, repo.MarkApplied(ctx, applied.ID))

	removed, err := repo.DeleteApplied(ctx, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Equal(t, 1, repo.Len())

	assert.ErrorIs(t, repo.MarkApplied(ctx, 999), outbox.ErrMessageNotFound)
}
