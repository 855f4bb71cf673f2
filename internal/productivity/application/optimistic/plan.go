package optimistic

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	planning "github.com/felixgeelhaar/grim/internal/planning/domain"
	"github.com/felixgeelhaar/grim/internal/productivity/application/store"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/internal/shared/domain"
)

// Plan operations only touch session-local side data. Nothing is queued.

// AssignTaskToBlock adds a task to a block. Assigning it twice is a no-op;
// the result reports whether anything changed.
func (e *Engine) AssignTaskToBlock(ctx context.Context, key planning.BlockKey, taskID uuid.UUID) (bool, error) {
	if _, err := e.config.Schedule.Block(key); err != nil {
		return false, err
	}
	var changed bool
	err := e.mutate(ctx, "assign_task", func(_ uuid.UUID, st *store.State) ([]domain.DomainEvent, error) {
		if task.IndexOf(st.Tasks, taskID) < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTask, taskID)
		}
		changed = st.Assignments.Assign(key, taskID)
		return nil, nil
	})
	return changed, err
}

// UnassignTaskFromBlock removes a task from a block. The task need not
// exist any more, so dangling ids can be cleaned up.
func (e *Engine) UnassignTaskFromBlock(ctx context.Context, key planning.BlockKey, taskID uuid.UUID) (bool, error) {
	if _, err := e.config.Schedule.Block(key); err != nil {
		return false, err
	}
	var changed bool
	err := e.mutate(ctx, "unassign_task", func(_ uuid.UUID, st *store.State) ([]domain.DomainEvent, error) {
		changed = st.Assignments.Unassign(key, taskID)
		return nil, nil
	})
	return changed, err
}

// ToggleMicroWorkout flips the micro-workout flag of a block and returns the
// new value. A block that was never toggled counts as false.
func (e *Engine) ToggleMicroWorkout(ctx context.Context, key planning.BlockKey) (bool, error) {
	if _, err := e.config.Schedule.Block(key); err != nil {
		return false, err
	}
	var done bool
	err := e.mutate(ctx, "toggle_micro_workout", func(_ uuid.UUID, st *store.State) ([]domain.DomainEvent, error) {
		done = st.MicroWorkouts.Toggle(key)
		return nil, nil
	})
	return done, err
}

// SetEatNote stores text for a block verbatim, empty string included.
func (e *Engine) SetEatNote(ctx context.Context, key planning.BlockKey, text string) error {
	if _, err := e.config.Schedule.Block(key); err != nil {
		return err
	}
	return e.mutate(ctx, "set_eat_note", func(_ uuid.UUID, st *store.State) ([]domain.DomainEvent, error) {
		st.EatNotes.Set(key, text)
		return nil, nil
	})
}
