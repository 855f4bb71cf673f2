package queries

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
)

// TaskReader is the read side of the session store. *store.Store satisfies it.
type TaskReader interface {
	Tasks() []task.Task
}

// TaskFilter narrows a task list. Zero fields match everything.
type TaskFilter struct {
	Search     string // title or initiative, case-insensitive
	Priority   string
	Category   string
	Initiative string
}

type taskMatcher func(task.Task) bool

func (f TaskFilter) matcher() (taskMatcher, error) {
	var checks []taskMatcher

	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		checks = append(checks, func(t task.Task) bool {
			return strings.Contains(strings.ToLower(t.Title), q) ||
				strings.Contains(strings.ToLower(t.Initiative.String()), q)
		})
	}
	if f.Priority != "" {
		p, err := value_objects.ParsePriority(f.Priority)
		if err != nil {
			return nil, fmt.Errorf("priority filter: %w", err)
		}
		checks = append(checks, func(t task.Task) bool { return t.Priority == p })
	}
	if f.Category != "" {
		c, err := value_objects.ParseCategory(f.Category)
		if err != nil {
			return nil, fmt.Errorf("category filter: %w", err)
		}
		checks = append(checks, func(t task.Task) bool { return t.Category == c })
	}
	if f.Initiative != "" {
		i, err := value_objects.ParseInitiative(f.Initiative)
		if err != nil {
			return nil, fmt.Errorf("initiative filter: %w", err)
		}
		checks = append(checks, func(t task.Task) bool { return t.Initiative == i })
	}

	return func(t task.Task) bool {
		for _, c := range checks {
			if !c(t) {
				return false
			}
		}
		return true
	}, nil
}

// ListTasksQuery contains the parameters for listing tasks.
type ListTasksQuery struct {
	TaskFilter
	Column string
	Limit  int // 0 = no limit
}

// ListTasksHandler handles the ListTasksQuery.
type ListTasksHandler struct {
	reader TaskReader
}

// NewListTasksHandler creates a new ListTasksHandler.
func NewListTasksHandler(reader TaskReader) *ListTasksHandler {
	return &ListTasksHandler{reader: reader}
}

// Handle executes the ListTasksQuery. Results keep board order.
func (h *ListTasksHandler) Handle(_ context.Context, query ListTasksQuery) ([]TaskDTO, error) {
	match, err := query.matcher()
	if err != nil {
		return nil, err
	}

	var column value_objects.Column
	if query.Column != "" {
		if column, err = value_objects.ParseColumn(query.Column); err != nil {
			return nil, fmt.Errorf("column filter: %w", err)
		}
	}

	result := make([]TaskDTO, 0)
	for _, t := range h.reader.Tasks() {
		if column != 0 && t.Column != column {
			continue
		}
		if !match(t) {
			continue
		}
		result = append(result, toTaskDTO(t))
		if query.Limit > 0 && len(result) == query.Limit {
			break
		}
	}
	return result, nil
}
