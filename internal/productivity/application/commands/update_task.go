package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
)

// TaskUpdater is the engine operation behind UpdateTaskHandler.
type TaskUpdater interface {
	UpdateTask(ctx context.Context, id uuid.UUID, patch task.Patch) (task.Task, error)
}

// UpdateTaskCommand contains the fields to change. Nil fields are kept.
type UpdateTaskCommand struct {
	TaskID      string
	Title       *string
	Description *string
	Priority    *string
	Category    *string
	Initiative  *string
	Estimate    *string
	Column      *string
	DueDate     *string
	// Tags replaces the whole tag list; an empty string clears it.
	Tags *string
}

// UpdateTaskHandler handles the UpdateTaskCommand.
type UpdateTaskHandler struct {
	engine TaskUpdater
}

// NewUpdateTaskHandler creates a new UpdateTaskHandler.
func NewUpdateTaskHandler(engine TaskUpdater) *UpdateTaskHandler {
	return &UpdateTaskHandler{engine: engine}
}

// Handle executes the UpdateTaskCommand.
func (h *UpdateTaskHandler) Handle(ctx context.Context, cmd UpdateTaskCommand) (task.Task, error) {
	id, err := parseID("task", cmd.TaskID)
	if err != nil {
		return task.Task{}, err
	}

	patch := task.Patch{
		Title:       cmd.Title,
		Description: cmd.Description,
		Estimate:    cmd.Estimate,
		DueDate:     cmd.DueDate,
	}
	if patch.Priority, err = parsePtr(cmd.Priority, value_objects.ParsePriority); err != nil {
		return task.Task{}, err
	}
	if patch.Category, err = parsePtr(cmd.Category, value_objects.ParseCategory); err != nil {
		return task.Task{}, err
	}
	if patch.Initiative, err = parsePtr(cmd.Initiative, value_objects.ParseInitiative); err != nil {
		return task.Task{}, err
	}
	if patch.Column, err = parsePtr(cmd.Column, value_objects.ParseColumn); err != nil {
		return task.Task{}, err
	}
	if cmd.Tags != nil {
		tags := splitTags(*cmd.Tags)
		if tags == nil {
			tags = []string{}
		}
		patch.Tags = &tags
	}

	return h.engine.UpdateTask(ctx, id, patch)
}
