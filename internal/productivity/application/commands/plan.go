package commands

import (
	"context"

	"github.com/google/uuid"

	planning "github.com/felixgeelhaar/grim/internal/planning/domain"
)

// PlanEngine is the set of daily plan operations the handler drives.
type PlanEngine interface {
	AssignTaskToBlock(ctx context.Context, key planning.BlockKey, taskID uuid.UUID) (bool, error)
	UnassignTaskFromBlock(ctx context.Context, key planning.BlockKey, taskID uuid.UUID) (bool, error)
	ToggleMicroWorkout(ctx context.Context, key planning.BlockKey) (bool, error)
	SetEatNote(ctx context.Context, key planning.BlockKey, text string) error
}

// BlockTaskCommand assigns or unassigns a task. Block uses the "Mon-2" form.
type BlockTaskCommand struct {
	Block  string
	TaskID string
}

// ToggleWorkoutCommand flips the micro-workout flag of a block.
type ToggleWorkoutCommand struct {
	Block string
}

// EatNoteCommand stores the meal note of a block.
type EatNoteCommand struct {
	Block string
	Text  string
}

// PlanHandler handles the daily plan commands.
type PlanHandler struct {
	engine PlanEngine
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(engine PlanEngine) *PlanHandler {
	return &PlanHandler{engine: engine}
}

// Assign executes an assignment. The result is false when the task was
// already in the block.
func (h *PlanHandler) Assign(ctx context.Context, cmd BlockTaskCommand) (bool, error) {
	key, id, err := parseBlockTask(cmd)
	if err != nil {
		return false, err
	}
	return h.engine.AssignTaskToBlock(ctx, key, id)
}

// Unassign removes a task from a block.
func (h *PlanHandler) Unassign(ctx context.Context, cmd BlockTaskCommand) (bool, error) {
	key, id, err := parseBlockTask(cmd)
	if err != nil {
		return false, err
	}
	return h.engine.UnassignTaskFromBlock(ctx, key, id)
}

// ToggleWorkout returns the new flag value.
func (h *PlanHandler) ToggleWorkout(ctx context.Context, cmd ToggleWorkoutCommand) (bool, error) {
	key, err := planning.ParseBlockKey(cmd.Block)
	if err != nil {
		return false, err
	}
	return h.engine.ToggleMicroWorkout(ctx, key)
}

// SetEatNote stores the note verbatim.
func (h *PlanHandler) SetEatNote(ctx context.Context, cmd EatNoteCommand) error {
	key, err := planning.ParseBlockKey(cmd.Block)
	if err != nil {
		return err
	}
	return h.engine.SetEatNote(ctx, key, cmd.Text)
}

func parseBlockTask(cmd BlockTaskCommand) (planning.BlockKey, uuid.UUID, error) {
	key, err := planning.ParseBlockKey(cmd.Block)
	if err != nil {
		return planning.BlockKey{}, uuid.Nil, err
	}
	id, err := parseID("task", cmd.TaskID)
	if err != nil {
		return planning.BlockKey{}, uuid.Nil, err
	}
	return key, id, nil
}
