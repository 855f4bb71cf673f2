package store_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	planning "github.com/felixgeelhaar/grim/internal/planning/domain"
	"github.com/felixgeelhaar/grim/internal/productivity/application/store"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/goal"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func mkTask(t *testing.T, title string, col value_objects.Column) task.Task {
	t.Helper()
	tsk, err := task.NewTask(uuid.New(), uuid.Nil, task.Fields{Title: title, Column: col, Tags: []string{"x"}}, now)
	require.NoError(t, err)
	return tsk
}

func mkGoal(t *testing.T, title string, h value_objects.Horizon, c value_objects.Category) goal.Goal {
	t.Helper()
	g, err := goal.NewGoal(uuid.New(), uuid.Nil, goal.Fields{Title: title, Horizon: h, Category: c}, now)
	require.NoError(t, err)
	return g
}

func TestNew_IsEmptyAndIdle(t *testing.T) {
	s := store.New()

	status, err := s.Status()
	assert.Equal(t, store.StatusIdle, status)
	assert.NoError(t, err)
	assert.Empty(t, s.Tasks())
	assert.Empty(t, s.Goals())
	assert.Empty(t, s.Assignments())
	assert.NotNil(t, s.MicroWorkouts())
	assert.NotNil(t, s.EatNotes())
}

func TestReplaceAll(t *testing.T) {
	s := store.New()
	s.MarkLoading()
	status, _ := s.Status()
	assert.Equal(t, store.StatusLoading, status)

	a := mkTask(t, "A", value_objects.ColumnBacklog)
	g := mkGoal(t, "G", value_objects.HorizonWeekly, value_objects.CategoryPrivate)
	s.ReplaceAll([]task.Task{a}, []goal.Goal{g})

	status, _ = s.Status()
	assert.Equal(t, store.StatusReady, status)
	require.Len(t, s.Tasks(), 1)
	assert.Equal(t, a.ID, s.Tasks()[0].ID)
	require.Len(t, s.Goals(), 1)

	// Wholesale: a second replace does not merge.
	s.ReplaceAll(nil, nil)
	assert.Empty(t, s.Tasks())
	assert.Empty(t, s.Goals())
}

func TestReadsReturnCopies(t *testing.T) {
	s := store.New()
	s.ReplaceAll([]task.Task{mkTask(t, "A", value_objects.ColumnBacklog)}, nil)

	tasks := s.Tasks()
	tasks[0].Title = "mutated"
	tasks[0].Tags[0] = "mutated"

	got := s.Tasks()[0]
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, []string{"x"}, got.Tags)
}

func TestClear(t *testing.T) {
	s := store.New()
	a := mkTask(t, "A", value_objects.ColumnBacklog)
	s.ReplaceAll([]task.Task{a}, []goal.Goal{mkGoal(t, "G", value_objects.HorizonYearly, value_objects.CategoryPrivate)})
	key := planning.NewBlockKey(planning.Monday, 2)
	require.NoError(t, s.Mutate(func(st *store.State) error {
		st.Assignments.Assign(key, a.ID)
		st.MicroWorkouts.Toggle(key)
		st.EatNotes.Set(key, "oats")
		return nil
	}))

	s.Clear()

	status, _ := s.Status()
	assert.Equal(t, store.StatusIdle, status)
	assert.Empty(t, s.Tasks())
	assert.Empty(t, s.Goals())
	assert.Empty(t, s.Assignments())
	assert.Empty(t, s.MicroWorkouts())
	assert.Empty(t, s.EatNotes())
}

func TestMarkLoading_DropsPreviousContents(t *testing.T) {
	s := store.New()
	a := mkTask(t, "A", value_objects.ColumnBacklog)
	s.ReplaceAll([]task.Task{a}, []goal.Goal{mkGoal(t, "G", value_objects.HorizonWeekly, value_objects.CategoryPrivate)})
	require.NoError(t, s.Mutate(func(st *store.State) error {
		st.EatNotes.Set(planning.NewBlockKey(planning.Monday, 4), "salad")
		return nil
	}))

	s.MarkLoading()

	status, _ := s.Status()
	assert.Equal(t, store.StatusLoading, status)
	assert.Empty(t, s.Tasks())
	assert.Empty(t, s.Goals())
	assert.Empty(t, s.EatNotes())
	_, ok := s.Task(a.ID)
	assert.False(t, ok)

	s.MarkFailed(errors.New("boom"))
	assert.Empty(t, s.Tasks())
}

func TestMarkFailed(t *testing.T) {
	s := store.New()
	boom := errors.New("boom")
	s.MarkFailed(boom)

	status, err := s.Status()
	assert.Equal(t, store.StatusFailed, status)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "failed", status.String())
}

func TestMutate_RestoresOnError(t *testing.T) {
	s := store.New()
	s.ReplaceAll([]task.Task{mkTask(t, "A", value_objects.ColumnBacklog)}, nil)
	before := s.Version()

	err := s.Mutate(func(st *store.State) error {
		st.Tasks[0].Title = "changed"
		st.Tasks = append(st.Tasks, mkTask(t, "B", value_objects.ColumnDone))
		return errors.New("rejected")
	})

	require.Error(t, err)
	require.Len(t, s.Tasks(), 1)
	assert.Equal(t, "A", s.Tasks()[0].Title)
	assert.Equal(t, before, s.Version())
}

func TestBoardAndColumns(t *testing.T) {
	s := store.New()
	a := mkTask(t, "A", value_objects.ColumnBacklog)
	d := mkTask(t, "D", value_objects.ColumnSprint)
	b := mkTask(t, "B", value_objects.ColumnBacklog)
	s.ReplaceAll([]task.Task{a, d, b}, nil)

	backlog := s.TasksInColumn(value_objects.ColumnBacklog)
	require.Len(t, backlog, 2)
	assert.Equal(t, "A", backlog[0].Title)
	assert.Equal(t, "B", backlog[1].Title)

	board := s.Board()
	require.Len(t, board, 5)
	assert.Equal(t, value_objects.ColumnBacklog, board[0].Column)
	assert.Equal(t, "In Progress", board[2].Title)
	assert.Len(t, board[1].Tasks, 1)
	assert.Empty(t, board[4].Tasks)
}

func TestGoalGrid(t *testing.T) {
	s := store.New()
	g := mkGoal(t, "Ship", value_objects.HorizonMonthly, value_objects.CategoryProfessional)
	s.ReplaceAll(nil, []goal.Goal{g})

	grid := s.GoalGrid()
	require.Len(t, grid, 6)

	filled := 0
	for _, cell := range grid {
		if cell.Goal != nil {
			filled++
			assert.Equal(t, g.Slot(), cell.Slot)
			assert.Equal(t, "Ship", cell.Goal.Title)
		}
	}
	assert.Equal(t, 1, filled)
	assert.Contains(t, s.GoalsBySlot(), g.Slot())
}

func TestResolveBlock_SkipsDeletedTasks(t *testing.T) {
	s := store.New()
	a := mkTask(t, "A", value_objects.ColumnBacklog)
	gone := uuid.New()
	s.ReplaceAll([]task.Task{a}, nil)

	key := planning.NewBlockKey(planning.Tuesday, 1)
	require.NoError(t, s.Mutate(func(st *store.State) error {
		st.Assignments.Assign(key, gone)
		st.Assignments.Assign(key, a.ID)
		return nil
	}))

	resolved := s.ResolveBlock(key)
	require.Len(t, resolved, 1)
	assert.Equal(t, a.ID, resolved[0].ID)
	assert.Equal(t, []uuid.UUID{gone}, s.DanglingAssignments()[key])
	assert.Empty(t, s.ResolveBlock(planning.NewBlockKey(planning.Friday, 0)))
}

func TestConcurrentReadersSeeWholeMutations(t *testing.T) {
	s := store.New()
	s.ReplaceAll(nil, nil)
	a := mkTask(t, "a", value_objects.ColumnBacklog)
	b := mkTask(t, "b", value_objects.ColumnBacklog)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = s.Mutate(func(st *store.State) error {
				// Readers must always see an even count.
				st.Tasks = append(st.Tasks, a, b)
				return nil
			})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			assert.Equal(t, 0, len(s.Tasks())%2)
		}
	}()
	wg.Wait()
	assert.Len(t, s.Tasks(), 400)
}
