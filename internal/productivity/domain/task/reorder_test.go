package task_test

import (
	"testing"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func board(t *testing.T, layout ...any) ([]task.Task, map[string]uuid.UUID) {
	t.Helper()
	ids := map[string]uuid.UUID{}
	var out []task.Task
	for i := 0; i < len(layout); i += 2 {
		title := layout[i].(string)
		col := layout[i+1].(value_objects.Column)
		tsk, err := task.NewTask(uuid.New(), uuid.Nil, task.Fields{Title: title, Column: col}, fixedNow)
		require.NoError(t, err)
		ids[title] = tsk.ID
		out = append(out, tsk)
	}
	return out, ids
}

func titles(tasks []task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestReorder_AcrossColumns(t *testing.T) {
	tasks, ids := board(t,
		"A", value_objects.ColumnBacklog,
		"B", value_objects.ColumnBacklog,
		"C", value_objects.ColumnBacklog,
		"D", value_objects.ColumnSprint,
	)

	result, changed := task.Reorder(tasks, task.Move{
		TaskID:            ids["B"],
		SourceColumn:      value_objects.ColumnBacklog,
		SourceIndex:       1,
		DestinationColumn: value_objects.ColumnSprint,
		DestinationIndex:  0,
	})

	require.True(t, changed)
	assert.Equal(t, []string{"A", "C"}, titles(task.InColumn(result, value_objects.ColumnBacklog)))
	assert.Equal(t, []string{"B", "D"}, titles(task.InColumn(result, value_objects.ColumnSprint)))
	assert.Equal(t, []string{"A", "C", "B", "D"}, titles(result))
	assert.Equal(t, value_objects.ColumnBacklog, tasks[1].Column, "input must not be modified")
}

func TestReorder_WithinColumn(t *testing.T) {
	tasks, ids := board(t,
		"A", value_objects.ColumnBacklog,
		"X", value_objects.ColumnSprint,
		"B", value_objects.ColumnBacklog,
		"C", value_objects.ColumnBacklog,
	)

	result, changed := task.Reorder(tasks, task.Move{
		TaskID:            ids["C"],
		SourceColumn:      value_objects.ColumnBacklog,
		SourceIndex:       2,
		DestinationColumn: value_objects.ColumnBacklog,
		DestinationIndex:  0,
	})

	require.True(t, changed)
	assert.Equal(t, []string{"X", "C", "A", "B"}, titles(result))
	assert.Equal(t, []string{"C", "A", "B"}, titles(task.InColumn(result, value_objects.ColumnBacklog)))
}

func TestReorder_SamePositionIsNoop(t *testing.T) {
	tasks, ids := board(t, "A", value_objects.ColumnBacklog, "B", value_objects.ColumnBacklog)

	result, changed := task.Reorder(tasks, task.Move{
		TaskID:            ids["B"],
		SourceColumn:      value_objects.ColumnBacklog,
		SourceIndex:       1,
		DestinationColumn: value_objects.ColumnBacklog,
		DestinationIndex:  1,
	})

	assert.False(t, changed)
	assert.Equal(t, titles(tasks), titles(result))
}

func TestReorder_ClampsPastEnd(t *testing.T) {
	tasks, ids := board(t,
		"A", value_objects.ColumnBacklog,
		"D", value_objects.ColumnDone,
		"E", value_objects.ColumnDone,
	)

	result, changed := task.Reorder(tasks, task.Move{
		TaskID:            ids["A"],
		SourceColumn:      value_objects.ColumnBacklog,
		DestinationColumn: value_objects.ColumnDone,
		DestinationIndex:  99,
	})

	require.True(t, changed)
	assert.Equal(t, []string{"D", "E", "A"}, titles(task.InColumn(result, value_objects.ColumnDone)))
}

func TestReorder_NegativeIndexClampsToFront(t *testing.T) {
	tasks, ids := board(t, "A", value_objects.ColumnBacklog, "D", value_objects.ColumnDone)

	result, _ := task.Reorder(tasks, task.Move{
		TaskID:            ids["A"],
		SourceColumn:      value_objects.ColumnBacklog,
		DestinationColumn: value_objects.ColumnDone,
		DestinationIndex:  -3,
	})

	assert.Equal(t, []string{"A", "D"}, titles(task.InColumn(result, value_objects.ColumnDone)))
}

func TestReorder_IntoEmptyColumn(t *testing.T) {
	tasks, ids := board(t, "A", value_objects.ColumnBacklog, "B", value_objects.ColumnBacklog)

	result, changed := task.Reorder(tasks, task.Move{
		TaskID:            ids["A"],
		SourceColumn:      value_objects.ColumnBacklog,
		DestinationColumn: value_objects.ColumnReview,
		DestinationIndex:  3,
	})

	require.True(t, changed)
	review := task.InColumn(result, value_objects.ColumnReview)
	require.Len(t, review, 1)
	assert.Equal(t, "A", review[0].Title)
	assert.Equal(t, value_objects.ColumnReview, review[0].Column)
}

func TestReorder_UnknownTask(t *testing.T) {
	tasks, _ := board(t, "A", value_objects.ColumnBacklog)

	result, changed := task.Reorder(tasks, task.Move{
		TaskID:            uuid.New(),
		SourceColumn:      value_objects.ColumnBacklog,
		DestinationColumn: value_objects.ColumnDone,
	})

	assert.False(t, changed)
	assert.Equal(t, titles(tasks), titles(result))
}

func TestReorder_PreservesLength(t *testing.T) {
	tasks, ids := board(t,
		"A", value_objects.ColumnBacklog,
		"B", value_objects.ColumnSprint,
		"C", value_objects.ColumnInProgress,
		"D", value_objects.ColumnReview,
		"E", value_objects.ColumnDone,
	)

	for name, id := range ids {
		for _, col := range value_objects.Columns() {
			for idx := 0; idx < 3; idx++ {
				result, _ := task.Reorder(tasks, task.Move{
					TaskID:            id,
					SourceColumn:      value_objects.ColumnBacklog,
					SourceIndex:       -1,
					DestinationColumn: col,
					DestinationIndex:  idx,
				})
				require.Len(t, result, len(tasks), name)
				moved := result[task.IndexOf(result, id)]
				assert.Equal(t, col, moved.Column)
			}
		}
	}
}
