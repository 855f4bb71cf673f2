package queries

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
)

// ErrTaskNotFound is returned when a task is not in the store.
var ErrTaskNotFound = errors.New("task not found")

// TaskGetter looks up one task by id. *store.Store satisfies it.
type TaskGetter interface {
	Task(id uuid.UUID) (task.Task, bool)
}

// GetTaskQuery contains the parameters for getting a single task.
type GetTaskQuery struct {
	TaskID uuid.UUID
}

// GetTaskHandler handles the GetTaskQuery.
type GetTaskHandler struct {
	reader TaskGetter
}

// NewGetTaskHandler creates a new GetTaskHandler.
func NewGetTaskHandler(reader TaskGetter) *GetTaskHandler {
	return &GetTaskHandler{reader: reader}
}

// Handle executes the GetTaskQuery.
func (h *GetTaskHandler) Handle(_ context.Context, query GetTaskQuery) (*TaskDTO, error) {
	t, ok := h.reader.Task(query.TaskID)
	if !ok {
		return nil, ErrTaskNotFound
	}
	dto := toTaskDTO(t)
	return &dto, nil
}
