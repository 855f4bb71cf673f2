// Package queries reads the session store into transport-friendly views.
package queries

import (
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/goal"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
)

// TaskDTO is a data transfer object for tasks.
type TaskDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    string    `json:"priority"`
	Category    string    `json:"category"`
	Initiative  string    `json:"initiative"`
	Estimate    string    `json:"estimate,omitempty"`
	Column      string    `json:"column"`
	DueDate     string    `json:"due_date,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GoalDTO is a data transfer object for goals.
type GoalDTO struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Horizon  string    `json:"horizon"`
	Category string    `json:"category"`
	Progress int       `json:"progress"`
	Reason   string    `json:"reason,omitempty"`
}

func toTaskDTO(t task.Task) TaskDTO {
	return TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority.String(),
		Category:    t.Category.String(),
		Initiative:  t.Initiative.String(),
		Estimate:    t.Estimate,
		Column:      t.Column.String(),
		DueDate:     t.DueDate,
		Tags:        t.Tags,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskDTOs(tasks []task.Task) []TaskDTO {
	out := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskDTO(t))
	}
	return out
}

func toGoalDTO(g goal.Goal) GoalDTO {
	return GoalDTO{
		ID:       g.ID,
		Title:    g.Title,
		Horizon:  g.Horizon.String(),
		Category: g.Category.String(),
		Progress: g.Progress,
		Reason:   g.Reason,
	}
}
