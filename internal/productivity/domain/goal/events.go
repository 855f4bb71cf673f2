package goal

import (
	"github.com/felixgeelhaar/grim/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "Goal"

	RoutingKeyCreated         = "goals.goal.created"
	RoutingKeyProgressUpdated = "goals.goal.progress_updated"
	RoutingKeyDeleted         = "goals.goal.deleted"
)

// GoalCreated is emitted when a goal is placed in a free slot.
type GoalCreated struct {
	domain.BaseEvent
	Goal Goal `json:"goal"`
}

func NewGoalCreated(g Goal) GoalCreated {
	return GoalCreated{
		BaseEvent: domain.NewBaseEvent(g.ID, AggregateType, RoutingKeyCreated),
		Goal:      g,
	}
}

// GoalProgressUpdated is emitted when progress changes.
type GoalProgressUpdated struct {
	domain.BaseEvent
	Progress int `json:"progress"`
}

func NewGoalProgressUpdated(goalID uuid.UUID, progress int) GoalProgressUpdated {
	return GoalProgressUpdated{
		BaseEvent: domain.NewBaseEvent(goalID, AggregateType, RoutingKeyProgressUpdated),
		Progress:  progress,
	}
}

// GoalDeleted is emitted when a goal is removed.
type GoalDeleted struct {
	domain.BaseEvent
}

func NewGoalDeleted(goalID uuid.UUID) GoalDeleted {
	return GoalDeleted{
		BaseEvent: domain.NewBaseEvent(goalID, AggregateType, RoutingKeyDeleted),
	}
}
