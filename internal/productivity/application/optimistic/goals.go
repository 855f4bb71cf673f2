package optimistic

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/grim/internal/productivity/application/store"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/goal"
	"github.com/felixgeelhaar/grim/internal/shared/domain"
)

// AddGoal places a goal in its (horizon, category) slot. An occupied slot
// is refused with goal.ErrSlotOccupied and nothing is sent.
func (e *Engine) AddGoal(ctx context.Context, f goal.Fields) (goal.Goal, error) {
	var created goal.Goal
	err := e.mutate(ctx, "add_goal", func(owner uuid.UUID, st *store.State) ([]domain.DomainEvent, error) {
		g, err := goal.NewGoal(e.config.NewID(), owner, f, e.config.Now())
		if err != nil {
			return nil, err
		}
		if !goal.CanAdd(st.Goals, g.Horizon, g.Category) {
			return nil, fmt.Errorf("%w: %s", goal.ErrSlotOccupied, g.Slot())
		}
		st.Goals = append(st.Goals, g)
		created = g
		return []domain.DomainEvent{goal.NewGoalCreated(g)}, nil
	})
	if err != nil {
		return goal.Goal{}, err
	}
	return created, nil
}

// UpdateGoalProgress sets the progress of a goal.
func (e *Engine) UpdateGoalProgress(ctx context.Context, id uuid.UUID, progress int) (goal.Goal, error) {
	var updated goal.Goal
	err := e.mutate(ctx, "update_goal_progress", func(_ uuid.UUID, st *store.State) ([]domain.DomainEvent, error) {
		i := indexOfGoal(st.Goals, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownGoal, id)
		}
		g, err := st.Goals[i].WithProgress(progress, e.config.Now())
		if err != nil {
			return nil, err
		}
		st.Goals[i] = g
		updated = g
		return []domain.DomainEvent{goal.NewGoalProgressUpdated(id, progress)}, nil
	})
	if err != nil {
		return goal.Goal{}, err
	}
	return updated, nil
}

// DeleteGoal frees the goal's slot. Deleting an unknown goal succeeds and
// sends nothing.
func (e *Engine) DeleteGoal(ctx context.Context, id uuid.UUID) error {
	return e.mutate(ctx, "delete_goal", func(_ uuid.UUID, st *store.State) ([]domain.DomainEvent, error) {
		i := indexOfGoal(st.Goals, id)
		if i < 0 {
			return nil, nil
		}
		st.Goals = slices.Delete(st.Goals, i, i+1)
		return []domain.DomainEvent{goal.NewGoalDeleted(id)}, nil
	})
}

func indexOfGoal(goals []goal.Goal, id uuid.UUID) int {
	return slices.IndexFunc(goals, func(g goal.Goal) bool { return g.ID == id })
}
