package store

import (
	"github.com/google/uuid"

	planning "github.com/felixgeelhaar/grim/internal/planning/domain"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/goal"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
)

// ColumnView is one board column with its tasks in display order.
type ColumnView struct {
	Column value_objects.Column `json:"column"`
	Title  string               `json:"title"`
	Tasks  []task.Task          `json:"tasks"`
}

// GoalCell is one slot of the goal grid. Goal is nil when the slot is free.
type GoalCell struct {
	Slot goal.Slot  `json:"-"`
	Goal *goal.Goal `json:"goal,omitempty"`
}

// TasksInColumn returns the tasks of col in display order.
func (s *Store) TasksInColumn(col value_objects.Column) []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(task.InColumn(s.state.Tasks, col))
}

// Board returns every column left to right, empty columns included.
func (s *Store) Board() []ColumnView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cols := value_objects.Columns()
	out := make([]ColumnView, 0, len(cols))
	for _, c := range cols {
		out = append(out, ColumnView{
			Column: c,
			Title:  c.Title(),
			Tasks:  cloneTasks(task.InColumn(s.state.Tasks, c)),
		})
	}
	return out
}

// GoalsBySlot maps each occupied slot to its goal.
func (s *Store) GoalsBySlot() map[goal.Slot]goal.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return goal.OccupiedSlots(s.state.Goals)
}

// GoalGrid returns all six slots in grid order (yearly, monthly, weekly ×
// professional, private).
func (s *Store) GoalGrid() []GoalCell {
	bySlot := s.GoalsBySlot()
	slots := goal.Slots()
	out := make([]GoalCell, 0, len(slots))
	for _, slot := range slots {
		cell := GoalCell{Slot: slot}
		if g, ok := bySlot[slot]; ok {
			cell.Goal = &g
		}
		out = append(out, cell)
	}
	return out
}

// ResolveBlock returns the tasks assigned to key. Ids of tasks that no
// longer exist are skipped.
func (s *Store) ResolveBlock(key planning.BlockKey) []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.state.Assignments[key]
	out := make([]task.Task, 0, len(ids))
	for _, id := range ids {
		if i := task.IndexOf(s.state.Tasks, id); i >= 0 {
			out = append(out, s.state.Tasks[i].Clone())
		}
	}
	return out
}

// DanglingAssignments lists assigned ids whose task is gone, per block.
func (s *Store) DanglingAssignments() map[planning.BlockKey][]uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[planning.BlockKey][]uuid.UUID)
	for key, ids := range s.state.Assignments {
		for _, id := range ids {
			if task.IndexOf(s.state.Tasks, id) < 0 {
				out[key] = append(out[key], id)
			}
		}
	}
	return out
}
