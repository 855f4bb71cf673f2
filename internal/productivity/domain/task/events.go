package task

import (
	"github.com/felixgeelhaar/grim/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "Task"

	RoutingKeyCreated = "board.task.created"
	RoutingKeyUpdated = "board.task.updated"
	RoutingKeyDeleted = "board.task.deleted"
)

// TaskCreated is emitted when a task is added to the board.
type TaskCreated struct {
	domain.BaseEvent
	Task Task `json:"task"`
}

// NewTaskCreated creates a TaskCreated event.
func NewTaskCreated(t Task) TaskCreated {
	return TaskCreated{
		BaseEvent: domain.NewBaseEvent(t.ID, AggregateType, RoutingKeyCreated),
		Task:      t.Clone(),
	}
}

// TaskUpdated is emitted when fields of a task change, including its column.
type TaskUpdated struct {
	domain.BaseEvent
	Patch  Patch    `json:"patch"`
	Fields []string `json:"fields"`
}

// NewTaskUpdated creates a TaskUpdated event.
func NewTaskUpdated(taskID uuid.UUID, patch Patch) TaskUpdated {
	return TaskUpdated{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyUpdated),
		Patch:     patch,
		Fields:    patch.FieldNames(),
	}
}

// TaskDeleted is emitted when a task is removed from the board.
type TaskDeleted struct {
	domain.BaseEvent
}

// NewTaskDeleted creates a TaskDeleted event.
func NewTaskDeleted(taskID uuid.UUID) TaskDeleted {
	return TaskDeleted{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyDeleted),
	}
}
