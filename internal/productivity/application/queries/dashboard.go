package queries

import (
	"context"
	"time"

	planning "github.com/felixgeelhaar/grim/internal/planning/domain"
	"github.com/felixgeelhaar/grim/internal/productivity/application/services"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/goal"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
)

// DashboardReader is what the dashboard reads from the session store.
type DashboardReader interface {
	Tasks() []task.Task
	Goals() []goal.Goal
}

// FocusDTO is a suggested next task.
type FocusDTO struct {
	Task        TaskDTO `json:"task"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// DashboardDTO holds the headline numbers.
type DashboardDTO struct {
	Day             string     `json:"day"`
	TotalTasks      int        `json:"total_tasks"`
	Sprint          int        `json:"sprint"`
	InProgress      int        `json:"in_progress"`
	Done            int        `json:"done"`
	Critical        int        `json:"critical"`
	CompletionRate  int        `json:"completion_rate"`
	AvgGoalProgress int        `json:"avg_goal_progress"`
	DeepWorkBlocks  int        `json:"deep_work_blocks"`
	Focus           []FocusDTO `json:"focus,omitempty"`
}

// DashboardQuery controls the focus list. FocusLimit 0 uses the default.
type DashboardQuery struct {
	FocusLimit int
}

const defaultFocusLimit = 3

// DashboardHandler computes the dashboard.
type DashboardHandler struct {
	reader   DashboardReader
	schedule planning.Schedule
	ranker   *services.PriorityEngine
	now      func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler. A nil ranker disables
// focus suggestions.
func NewDashboardHandler(reader DashboardReader, schedule planning.Schedule, ranker *services.PriorityEngine) *DashboardHandler {
	return &DashboardHandler{reader: reader, schedule: schedule, ranker: ranker, now: time.Now}
}

// Handle executes the DashboardQuery.
func (h *DashboardHandler) Handle(_ context.Context, query DashboardQuery) (*DashboardDTO, error) {
	tasks := h.reader.Tasks()
	today := planning.Today(h.now())

	d := &DashboardDTO{
		Day:             string(today),
		TotalTasks:      len(tasks),
		AvgGoalProgress: goal.AverageProgress(h.reader.Goals()),
		DeepWorkBlocks:  h.schedule.CountByType(today, planning.BlockTypeDeepWork),
	}
	for _, t := range tasks {
		switch t.Column {
		case value_objects.ColumnSprint:
			d.Sprint++
		case value_objects.ColumnInProgress:
			d.InProgress++
		case value_objects.ColumnDone:
			d.Done++
		}
		if t.Priority == value_objects.PriorityCritical {
			d.Critical++
		}
	}
	d.CompletionRate = percent(d.Done, d.TotalTasks)

	if h.ranker != nil {
		limit := query.FocusLimit
		if limit <= 0 {
			limit = defaultFocusLimit
		}
		for _, r := range h.ranker.Rank(tasks, limit) {
			d.Focus = append(d.Focus, FocusDTO{Task: toTaskDTO(r.Task), Score: r.Score, Explanation: r.Explanation})
		}
	}
	return d, nil
}
