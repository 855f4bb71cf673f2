package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/goal"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
	"github.com/felixgeelhaar/grim/internal/productivity/infrastructure/persistence"
	"github.com/felixgeelhaar/grim/internal/shared/domain"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/outbox"
)

func message(t *testing.T, owner uuid.UUID, ev domain.DomainEvent) *outbox.Message {
	t.Helper()
	msg, err := outbox.NewMessage(owner, ev)
	require.NoError(t, err)
	return msg
}

func TestCommitApplier_TaskLifecycle(t *testing.T) {
	ctx := context.Background()
	tasks := persistence.NewMemoryTaskGateway()
	applier := persistence.NewCommitApplier(tasks, persistence.NewMemoryGoalGateway(), nil)
	owner := uuid.New()

	tsk, err := task.NewTask(uuid.New(), owner, task.Fields{
		Title:    "Record intro",
		Priority: value_objects.PriorityHigh,
		Tags:     []string{"audio"},
	}, time.Now())
	require.NoError(t, err)

	require.NoError(t, applier.Apply(ctx, message(t, owner, task.NewTaskCreated(tsk))))

	rows, err := tasks.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Record intro", rows[0].Title)
	assert.Equal(t, value_objects.PriorityHigh, rows[0].Priority)
	assert.Equal(t, []string{"audio"}, rows[0].Tags)

	// A replayed insert is treated as applied.
	require.NoError(t, applier.Apply(ctx, message(t, owner, task.NewTaskCreated(tsk))))

	col := value_objects.ColumnDone
	require.NoError(t, applier.Apply(ctx, message(t, owner, task.NewTaskUpdated(tsk.ID, task.Patch{Column: &col}))))
	rows, _ = tasks.List(ctx, owner)
	assert.Equal(t, value_objects.ColumnDone, rows[0].Column)

	require.NoError(t, applier.Apply(ctx, message(t, owner, task.NewTaskDeleted(tsk.ID))))
	rows, _ = tasks.List(ctx, owner)
	assert.Empty(t, rows)
}

func TestCommitApplier_UpdateOfMissingRowIsPermanent(t *testing.T) {
	applier := persistence.NewCommitApplier(persistence.NewMemoryTaskGateway(), persistence.NewMemoryGoalGateway(), nil)
	title := "x"

	err := applier.Apply(context.Background(), message(t, uuid.New(), task.NewTaskUpdated(uuid.New(), task.Patch{Title: &title})))

	require.Error(t, err)
	assert.True(t, outbox.IsPermanent(err))
	assert.ErrorIs(t, err, persistence.ErrTaskNotFound)
}

func TestCommitApplier_GoalLifecycle(t *testing.T) {
	ctx := context.Background()
	goals := persistence.NewMemoryGoalGateway()
	applier := persistence.NewCommitApplier(persistence.NewMemoryTaskGateway(), goals, nil)
	owner := uuid.New()

	g, err := goal.NewGoal(uuid.New(), owner, goal.Fields{
		Title:    "Launch season two",
		Horizon:  value_objects.HorizonYearly,
		Category: value_objects.CategoryProfessional,
	}, time.Now())
	require.NoError(t, err)

	require.NoError(t, applier.Apply(ctx, message(t, owner, goal.NewGoalCreated(g))))
	require.NoError(t, applier.Apply(ctx, message(t, owner, goal.NewGoalProgressUpdated(g.ID, 60))))

	rows, err := goals.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 60, rows[0].Progress)
	assert.Equal(t, value_objects.HorizonYearly, rows[0].Horizon)

	require.NoError(t, applier.Apply(ctx, message(t, owner, goal.NewGoalDeleted(g.ID))))
	rows, _ = goals.List(ctx, owner)
	assert.Empty(t, rows)

	err = applier.Apply(ctx, message(t, owner, goal.NewGoalProgressUpdated(g.ID, 10)))
	assert.True(t, outbox.IsPermanent(err))
}

func TestCommitApplier_UnknownRoutingKey(t *testing.T) {
	applier := persistence.NewCommitApplier(persistence.NewMemoryTaskGateway(), persistence.NewMemoryGoalGateway(), nil)
	msg := &outbox.Message{RoutingKey: "board.column.renamed", AggregateID: uuid.New()}

	err := applier.Apply(context.Background(), msg)

	assert.True(t, outbox.IsPermanent(err))
}
