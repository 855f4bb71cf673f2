package commands

import (
	"context"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
)

// TaskAdder is the engine operation behind CreateTaskHandler.
type TaskAdder interface {
	AddTask(ctx context.Context, f task.Fields) (task.Task, error)
}

// CreateTaskCommand contains the data needed to create a task. Blank enum
// fields fall back to the board defaults.
type CreateTaskCommand struct {
	Title       string
	Description string
	Priority    string
	Category    string
	Initiative  string
	Estimate    string
	Column      string
	DueDate     string
	// Tags is a comma separated list.
	Tags string
}

// CreateTaskResult contains the result of creating a task.
type CreateTaskResult struct {
	Task task.Task
}

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	engine TaskAdder
}

// NewCreateTaskHandler creates a new CreateTaskHandler.
func NewCreateTaskHandler(engine TaskAdder) *CreateTaskHandler {
	return &CreateTaskHandler{engine: engine}
}

// Handle executes the CreateTaskCommand.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*CreateTaskResult, error) {
	priority, err := parseOptional(cmd.Priority, value_objects.ParsePriority)
	if err != nil {
		return nil, err
	}
	category, err := parseOptional(cmd.Category, value_objects.ParseCategory)
	if err != nil {
		return nil, err
	}
	initiative, err := parseOptional(cmd.Initiative, value_objects.ParseInitiative)
	if err != nil {
		return nil, err
	}
	column, err := parseOptional(cmd.Column, value_objects.ParseColumn)
	if err != nil {
		return nil, err
	}

	t, err := h.engine.AddTask(ctx, task.Fields{
		Title:       cmd.Title,
		Description: cmd.Description,
		Priority:    priority,
		Category:    category,
		Initiative:  initiative,
		Estimate:    cmd.Estimate,
		Column:      column,
		DueDate:     cmd.DueDate,
		Tags:        splitTags(cmd.Tags),
	})
	if err != nil {
		return nil, err
	}
	return &CreateTaskResult{Task: t}, nil
}
