package optimistic

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/grim/internal/productivity/application/store"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
	"github.com/felixgeelhaar/grim/internal/shared/domain"
)

// AddTask creates a task with a fresh id, appends it to the board and queues
// the insert.
func (e *Engine) AddTask(ctx context.Context, f task.Fields) (task.Task, error) {
	var created task.Task
	err := e.mutate(ctx, "add_task", func(owner uuid.UUID, st *store.State) ([]domain.DomainEvent, error) {
		t, err := task.NewTask(e.config.NewID(), owner, f, e.config.Now())
		if err != nil {
			return nil, err
		}
		st.Tasks = append(st.Tasks, t)
		created = t.Clone()
		return []domain.DomainEvent{task.NewTaskCreated(t)}, nil
	})
	if err != nil {
		return task.Task{}, err
	}
	return created, nil
}

// UpdateTask merges the set fields of patch into the task and queues an
// update carrying the same fields.
func (e *Engine) UpdateTask(ctx context.Context, id uuid.UUID, patch task.Patch) (task.Task, error) {
	var updated task.Task
	err := e.mutate(ctx, "update_task", func(_ uuid.UUID, st *store.State) ([]domain.DomainEvent, error) {
		i := task.IndexOf(st.Tasks, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTask, id)
		}
		t, err := patch.Apply(st.Tasks[i], e.config.Now())
		if err != nil {
			return nil, err
		}
		st.Tasks[i] = t
		updated = t.Clone()
		return []domain.DomainEvent{task.NewTaskUpdated(id, patch.Normalize())}, nil
	})
	if err != nil {
		return task.Task{}, err
	}
	return updated, nil
}

// MoveTask sets the column of a task. Its position in the global order is
// kept, so it lands wherever that order places it within the new column.
func (e *Engine) MoveTask(ctx context.Context, id uuid.UUID, col value_objects.Column) error {
	if !col.IsValid() {
		return fmt.Errorf("%w: %d", value_objects.ErrInvalidColumn, col)
	}
	return e.mutate(ctx, "move_task", func(_ uuid.UUID, st *store.State) ([]domain.DomainEvent, error) {
		i := task.IndexOf(st.Tasks, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTask, id)
		}
		if st.Tasks[i].Column == col {
			return nil, nil
		}
		st.Tasks[i].Column = col
		st.Tasks[i].UpdatedAt = e.config.Now().UTC()
		return []domain.DomainEvent{task.NewTaskUpdated(id, task.ColumnPatch(col))}, nil
	})
}

// ReorderTask applies a drag-and-drop move. Ordering is local to the
// session; only a column change is sent to the remote store.
func (e *Engine) ReorderTask(ctx context.Context, m task.Move) error {
	if !m.DestinationColumn.IsValid() {
		return fmt.Errorf("%w: %d", value_objects.ErrInvalidColumn, m.DestinationColumn)
	}
	return e.mutate(ctx, "reorder_task", func(_ uuid.UUID, st *store.State) ([]domain.DomainEvent, error) {
		i := task.IndexOf(st.Tasks, m.TaskID)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTask, m.TaskID)
		}
		from := st.Tasks[i].Column

		result, changed := task.Reorder(st.Tasks, m)
		if !changed {
			return nil, nil
		}
		st.Tasks = result
		if from == m.DestinationColumn {
			return nil, nil
		}
		moved := task.IndexOf(st.Tasks, m.TaskID)
		st.Tasks[moved].UpdatedAt = e.config.Now().UTC()
		return []domain.DomainEvent{task.NewTaskUpdated(m.TaskID, task.ColumnPatch(m.DestinationColumn))}, nil
	})
}

// DeleteTask removes a task. Deleting a task that is not in the store
// succeeds and sends nothing. Block assignments are left alone.
func (e *Engine) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return e.mutate(ctx, "delete_task", func(_ uuid.UUID, st *store.State) ([]domain.DomainEvent, error) {
		i := task.IndexOf(st.Tasks, id)
		if i < 0 {
			return nil, nil
		}
		st.Tasks = slices.Delete(st.Tasks, i, i+1)
		return []domain.DomainEvent{task.NewTaskDeleted(id)}, nil
	})
}
