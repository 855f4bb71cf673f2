package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/goal"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
)

// GoalEngine is the set of goal operations the handlers drive.
type GoalEngine interface {
	AddGoal(ctx context.Context, f goal.Fields) (goal.Goal, error)
	UpdateGoalProgress(ctx context.Context, id uuid.UUID, progress int) (goal.Goal, error)
	DeleteGoal(ctx context.Context, id uuid.UUID) error
}

// CreateGoalCommand places a goal in the grid.
type CreateGoalCommand struct {
	Title    string
	Horizon  string
	Category string
	Progress int
	Reason   string
}

// UpdateGoalProgressCommand sets a goal's progress (0 to 100).
type UpdateGoalProgressCommand struct {
	GoalID   string
	Progress int
}

// DeleteGoalCommand frees a goal slot.
type DeleteGoalCommand struct {
	GoalID string
}

// GoalHandler handles the goal commands.
type GoalHandler struct {
	engine GoalEngine
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(engine GoalEngine) *GoalHandler {
	return &GoalHandler{engine: engine}
}

// Create executes the CreateGoalCommand. Horizon and category are required
// because together they name the slot.
func (h *GoalHandler) Create(ctx context.Context, cmd CreateGoalCommand) (goal.Goal, error) {
	horizon, err := value_objects.ParseHorizon(cmd.Horizon)
	if err != nil {
		return goal.Goal{}, fmt.Errorf("horizon %q: %w", cmd.Horizon, err)
	}
	category, err := value_objects.ParseCategory(cmd.Category)
	if err != nil {
		return goal.Goal{}, fmt.Errorf("category %q: %w", cmd.Category, err)
	}
	return h.engine.AddGoal(ctx, goal.Fields{
		Title:    cmd.Title,
		Horizon:  horizon,
		Category: category,
		Progress: cmd.Progress,
		Reason:   cmd.Reason,
	})
}

// UpdateProgress executes the UpdateGoalProgressCommand.
func (h *GoalHandler) UpdateProgress(ctx context.Context, cmd UpdateGoalProgressCommand) (goal.Goal, error) {
	id, err := parseID("goal", cmd.GoalID)
	if err != nil {
		return goal.Goal{}, err
	}
	return h.engine.UpdateGoalProgress(ctx, id, cmd.Progress)
}

// Delete executes the DeleteGoalCommand.
func (h *GoalHandler) Delete(ctx context.Context, cmd DeleteGoalCommand) error {
	id, err := parseID("goal", cmd.GoalID)
	if err != nil {
		return err
	}
	return h.engine.DeleteGoal(ctx, id)
}
