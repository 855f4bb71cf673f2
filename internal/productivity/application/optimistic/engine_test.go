package optimistic_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/grim/internal/identity/application/session"
	identity "github.com/felixgeelhaar/grim/internal/identity/domain"
	planning "github.com/felixgeelhaar/grim/internal/planning/domain"
	"github.com/felixgeelhaar/grim/internal/productivity/application/optimistic"
	"github.com/felixgeelhaar/grim/internal/productivity/application/store"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/goal"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
	"github.com/felixgeelhaar/grim/internal/productivity/infrastructure/persistence"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/grim/pkg/observability"
)

type harness struct {
	engine  *optimistic.Engine
	store   *store.Store
	tasks   *persistence.MemoryTaskGateway
	goals   *persistence.MemoryGoalGateway
	queue   *outbox.Processor
	metrics *observability.InMemoryMetrics
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	tasks      task.Gateway
	goals      goal.Gateway
	maxRetries int
}

func withTaskGateway(fn func(*persistence.MemoryTaskGateway) task.Gateway) harnessOption {
	return func(c *harnessConfig) { c.tasks = fn(c.tasks.(*persistence.MemoryTaskGateway)) }
}

func withGoalGateway(fn func(*persistence.MemoryGoalGateway) goal.Gateway) harnessOption {
	return func(c *harnessConfig) { c.goals = fn(c.goals.(*persistence.MemoryGoalGateway)) }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	memTasks := persistence.NewMemoryTaskGateway()
	memGoals := persistence.NewMemoryGoalGateway()
	cfg := &harnessConfig{tasks: memTasks, goals: memGoals, maxRetries: 3}
	for _, opt := range opts {
		opt(cfg)
	}

	metrics := observability.NewInMemoryMetrics()
	bus := eventbus.NewInProcessEventBus(nil)
	st := store.New()

	queueCfg := outbox.DefaultProcessorConfig()
	queueCfg.MaxRetries = cfg.maxRetries
	queueCfg.PollInterval = 5 * time.Millisecond
	queueCfg.RetryBackoffBase = time.Millisecond
	queue := outbox.NewProcessor(
		outbox.NewMemoryRepository(),
		persistence.NewCommitApplier(cfg.tasks, cfg.goals, nil),
		bus,
		queueCfg,
		nil,
	)

	engine := optimistic.New(st, cfg.tasks, cfg.goals, queue, optimistic.Config{}, nil).WithMetrics(metrics)
	bus.RegisterConsumer(engine.FailureConsumer())

	return &harness{
		engine:  engine,
		store:   st,
		tasks:   memTasks,
		goals:   memGoals,
		queue:   queue,
		metrics: metrics,
	}
}

func (h *harness) signIn(t *testing.T, userID uuid.UUID) {
	t.Helper()
	h.engine.HandleSession(&identity.Session{UserID: userID})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.engine.WaitForLoad(ctx))
}

func (h *harness) pending(t *testing.T) int {
	t.Helper()
	n, err := h.queue.Pending(context.Background())
	require.NoError(t, err)
	return n
}

func (h *harness) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.queue.Drain(ctx))
}

func mustKey(t *testing.T, s string) planning.BlockKey {
	t.Helper()
	key, err := planning.ParseBlockKey(s)
	require.NoError(t, err)
	return key
}

func titles(tasks []task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

// blockingInserts holds every Insert until release is closed.
type blockingInserts struct {
	task.Gateway
	entered chan struct{}
	release chan struct{}
}

func (b *blockingInserts) Insert(ctx context.Context, t task.Task) (task.Task, error) {
	b.entered <- struct{}{}
	<-b.release
	return b.Gateway.Insert(ctx, t)
}

// gatedLists holds List calls for owners that have a gate until it is closed.
type gatedLists struct {
	task.Gateway
	mu    sync.Mutex
	gates map[uuid.UUID]chan struct{}
}

func (g *gatedLists) gate(owner uuid.UUID) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan struct{})
	g.gates[owner] = ch
	return ch
}

func (g *gatedLists) List(ctx context.Context, owner uuid.UUID) ([]task.Task, error) {
	g.mu.Lock()
	ch := g.gates[owner]
	g.mu.Unlock()
	if ch != nil {
		<-ch
	}
	return g.Gateway.List(ctx, owner)
}

type failingGoals struct {
	goal.Gateway
	err error
}

func (f failingGoals) List(context.Context, uuid.UUID) ([]goal.Goal, error) {
	return nil, f.err
}

// ownerFailingGoals fails List for one owner only.
type ownerFailingGoals struct {
	goal.Gateway
	owner uuid.UUID
	err   error
}

func (f ownerFailingGoals) List(ctx context.Context, owner uuid.UUID) ([]goal.Goal, error) {
	if owner == f.owner {
		return nil, f.err
	}
	return f.Gateway.List(ctx, owner)
}

type failingInserts struct {
	task.Gateway
}

func (failingInserts) Insert(context.Context, task.Task) (task.Task, error) {
	return task.Task{}, errors.New("connection reset")
}

func TestMutationsWithoutSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.engine.AddTask(ctx, task.Fields{Title: "Draft copy"})
	assert.ErrorIs(t, err, optimistic.ErrNoSession)

	assert.ErrorIs(t, h.engine.DeleteTask(ctx, uuid.New()), optimistic.ErrNoSession)

	_, err = h.engine.AddGoal(ctx, goal.Fields{Title: "X", Horizon: value_objects.HorizonWeekly, Category: value_objects.CategoryProfessional})
	assert.ErrorIs(t, err, optimistic.ErrNoSession)

	_, err = h.engine.ToggleMicroWorkout(ctx, mustKey(t, "Mon-2"))
	assert.ErrorIs(t, err, optimistic.ErrNoSession)

	assert.Empty(t, h.store.Tasks())
	assert.Zero(t, h.pending(t))
	assert.Equal(t, int64(1), h.metrics.GetCounter(observability.MetricMutationsDenied, observability.T("op", "add_task")))
}

func TestBootstrap_LoadsOwnRows(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user, other := uuid.New(), uuid.New()

	mine, err := task.NewTask(uuid.New(), user, task.Fields{Title: "mine"}, time.Now())
	require.NoError(t, err)
	theirs, err := task.NewTask(uuid.New(), other, task.Fields{Title: "theirs"}, time.Now())
	require.NoError(t, err)
	_, err = h.tasks.Insert(ctx, mine)
	require.NoError(t, err)
	_, err = h.tasks.Insert(ctx, theirs)
	require.NoError(t, err)

	g, err := goal.NewGoal(uuid.New(), user, goal.Fields{Title: "G", Horizon: value_objects.HorizonYearly, Category: value_objects.CategoryPrivate}, time.Now())
	require.NoError(t, err)
	_, err = h.goals.Insert(ctx, g)
	require.NoError(t, err)

	h.signIn(t, user)

	status, _ := h.store.Status()
	assert.Equal(t, store.StatusReady, status)
	assert.Equal(t, []string{"mine"}, titles(h.store.Tasks()))
	require.Len(t, h.store.Goals(), 1)
	assert.Equal(t, g.ID, h.store.Goals()[0].ID)
}

func TestBootstrap_Failure(t *testing.T) {
	boom := errors.New("database is locked")
	h := newHarness(t, withGoalGateway(func(m *persistence.MemoryGoalGateway) goal.Gateway {
		return failingGoals{Gateway: m, err: boom}
	}))

	h.engine.HandleSession(&identity.Session{UserID: uuid.New()})
	err := h.engine.WaitForLoad(context.Background())

	require.ErrorIs(t, err, boom)
	status, loadErr := h.store.Status()
	assert.Equal(t, store.StatusFailed, status)
	assert.ErrorIs(t, loadErr, boom)
	assert.Equal(t, int64(1), h.metrics.GetCounter(observability.MetricBootstrapErrors))
}

func TestBootstrap_SupersededResultIsDiscarded(t *testing.T) {
	var gated *gatedLists
	h := newHarness(t, withTaskGateway(func(m *persistence.MemoryTaskGateway) task.Gateway {
		gated = &gatedLists{Gateway: m, gates: map[uuid.UUID]chan struct{}{}}
		return gated
	}))
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	a, err := task.NewTask(uuid.New(), alice, task.Fields{Title: "alice"}, time.Now())
	require.NoError(t, err)
	b, err := task.NewTask(uuid.New(), bob, task.Fields{Title: "bob"}, time.Now())
	require.NoError(t, err)
	_, _ = h.tasks.Insert(ctx, a)
	_, _ = h.tasks.Insert(ctx, b)

	aliceGate := gated.gate(alice)
	h.engine.HandleSession(&identity.Session{UserID: alice})
	h.signIn(t, bob)
	assert.Equal(t, []string{"bob"}, titles(h.store.Tasks()))

	close(aliceGate)
	// Give the stale bootstrap time to finish; its result must not land.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"bob"}, titles(h.store.Tasks()))
}

func TestSwitchingUsersNeverShowsPreviousRows(t *testing.T) {
	boom := errors.New("boom")
	alice, bob := uuid.New(), uuid.New()
	h := newHarness(t, withGoalGateway(func(m *persistence.MemoryGoalGateway) goal.Gateway {
		return ownerFailingGoals{Gateway: m, owner: bob, err: boom}
	}))
	ctx := context.Background()

	h.signIn(t, alice)
	_, err := h.engine.AddTask(ctx, task.Fields{Title: "alice secret"})
	require.NoError(t, err)
	_, err = h.engine.ToggleMicroWorkout(ctx, mustKey(t, "Wed-2"))
	require.NoError(t, err)

	h.engine.HandleSession(&identity.Session{UserID: bob})
	assert.Empty(t, h.store.Tasks(), "previous rows must be gone while the next load runs")
	assert.Empty(t, h.store.MicroWorkouts())

	require.ErrorIs(t, h.engine.WaitForLoad(ctx), boom)
	status, _ := h.store.Status()
	assert.Equal(t, store.StatusFailed, status)
	assert.Empty(t, h.store.Tasks())
	assert.Empty(t, h.store.Goals())
	assert.Empty(t, h.store.MicroWorkouts())
}

func TestMutationsWhileLoading(t *testing.T) {
	var gated *gatedLists
	h := newHarness(t, withTaskGateway(func(m *persistence.MemoryTaskGateway) task.Gateway {
		gated = &gatedLists{Gateway: m, gates: map[uuid.UUID]chan struct{}{}}
		return gated
	}))
	ctx := context.Background()
	user := uuid.New()

	gate := gated.gate(user)
	h.engine.HandleSession(&identity.Session{UserID: user})

	_, err := h.engine.AddTask(ctx, task.Fields{Title: "too early"})
	assert.ErrorIs(t, err, optimistic.ErrLoading)
	assert.ErrorIs(t, h.engine.SetEatNote(ctx, mustKey(t, "Mon-5"), "soup"), optimistic.ErrLoading)
	assert.Zero(t, h.pending(t))
	assert.Equal(t, int64(1), h.metrics.GetCounter(observability.MetricMutationsDenied, observability.T("op", "add_task")))

	close(gate)
	require.NoError(t, h.engine.WaitForLoad(ctx))

	_, err = h.engine.AddTask(ctx, task.Fields{Title: "on time"})
	require.NoError(t, err)
	assert.Equal(t, []string{"on time"}, titles(h.store.Tasks()))
	assert.Equal(t, 1, h.pending(t))
}

func TestTokenRefreshDoesNotReload(t *testing.T) {
	h := newHarness(t)
	user := uuid.New()
	h.signIn(t, user)

	_, err := h.engine.AddTask(context.Background(), task.Fields{Title: "local"})
	require.NoError(t, err)
	before := h.store.Version()

	h.engine.HandleSession(&identity.Session{UserID: user, Token: &oauth2.Token{AccessToken: "fresh"}})

	assert.Equal(t, before, h.store.Version())
	assert.Equal(t, []string{"local"}, titles(h.store.Tasks()))
	assert.Equal(t, "fresh", h.engine.Session().Token.AccessToken)
	assert.Equal(t, int64(1), h.metrics.GetCounter(observability.MetricSessionChanges, observability.T("signed_in", "true")))
}

func TestSignOutClearsEverything(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signIn(t, uuid.New())

	tsk, err := h.engine.AddTask(ctx, task.Fields{Title: "A"})
	require.NoError(t, err)
	key := mustKey(t, "Tue-1")
	_, err = h.engine.AssignTaskToBlock(ctx, key, tsk.ID)
	require.NoError(t, err)
	require.NoError(t, h.engine.SetEatNote(ctx, key, "soup"))

	h.engine.HandleSession(nil)

	status, _ := h.store.Status()
	assert.Equal(t, store.StatusIdle, status)
	assert.Empty(t, h.store.Tasks())
	assert.Empty(t, h.store.Assignments())
	assert.Empty(t, h.store.EatNotes())
	assert.Nil(t, h.engine.Session())
}

func TestAttach_FollowsManager(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	mgr := session.NewManager(nil, nil)

	unsubscribe := h.engine.Attach(mgr)
	defer unsubscribe()

	user := uuid.New()
	seeded, err := task.NewTask(uuid.New(), user, task.Fields{Title: "remote"}, time.Now())
	require.NoError(t, err)
	_, err = h.tasks.Insert(ctx, seeded)
	require.NoError(t, err)

	_, err = mgr.SignIn(ctx, user, identity.Email{}, nil)
	require.NoError(t, err)
	require.NoError(t, h.engine.WaitForLoad(ctx))
	assert.Equal(t, []string{"remote"}, titles(h.store.Tasks()))

	require.NoError(t, mgr.SignOut(ctx))
	assert.Empty(t, h.store.Tasks())
}

// Session ends while the insert of a new task is still in flight. The store
// is cleared right away. What the next sign-in shows depends on whether the
// insert landed first; both orders are exercised.
func TestSessionEndsWithPendingInsert(t *testing.T) {
	run := func(t *testing.T, releaseBeforeSignIn bool) []string {
		var blocking *blockingInserts
		h := newHarness(t, withTaskGateway(func(m *persistence.MemoryTaskGateway) task.Gateway {
			blocking = &blockingInserts{Gateway: m, entered: make(chan struct{}, 1), release: make(chan struct{})}
			return blocking
		}))
		ctx := context.Background()
		user := uuid.New()
		h.signIn(t, user)

		_, err := h.engine.AddTask(ctx, task.Fields{Title: "in flight"})
		require.NoError(t, err)
		require.Len(t, h.store.Tasks(), 1)

		done := make(chan error, 1)
		go func() { done <- h.queue.ProcessOnce(ctx) }()
		<-blocking.entered

		h.engine.HandleSession(nil)
		assert.Empty(t, h.store.Tasks(), "store must clear without waiting for commits")

		if releaseBeforeSignIn {
			close(blocking.release)
			require.NoError(t, <-done)
			h.signIn(t, user)
		} else {
			h.signIn(t, user)
			close(blocking.release)
			require.NoError(t, <-done)
		}
		return titles(h.store.Tasks())
	}

	t.Run("insert lands before sign-in", func(t *testing.T) {
		assert.Equal(t, []string{"in flight"}, run(t, true))
	})
	t.Run("sign-in before insert lands", func(t *testing.T) {
		assert.Empty(t, run(t, false))
	})
}

func TestFailuresAreReported(t *testing.T) {
	h := newHarness(t, withTaskGateway(func(m *persistence.MemoryTaskGateway) task.Gateway {
		return failingInserts{Gateway: m}
	}))
	h.engine.HandleSession(&identity.Session{UserID: uuid.New()})
	require.NoError(t, h.engine.WaitForLoad(context.Background()))

	tsk, err := h.engine.AddTask(context.Background(), task.Fields{Title: "doomed"})
	require.NoError(t, err)

	h.drain(t)

	select {
	case f := <-h.engine.Failures():
		assert.Equal(t, task.RoutingKeyCreated, f.RoutingKey)
		assert.Equal(t, tsk.ID, f.AggregateID)
		assert.Contains(t, f.Reason, "connection reset")
		assert.Contains(t, f.String(), "board.task.created")
	case <-time.After(time.Second):
		t.Fatal("no failure reported")
	}

	// No rollback: the local record stays.
	assert.Equal(t, []string{"doomed"}, titles(h.store.Tasks()))
	dead, err := h.queue.DeadLetters(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, dead, 1)
}
