package task

import (
	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
	"github.com/google/uuid"
)

// Move describes a drag-and-drop gesture on the board.
type Move struct {
	TaskID            uuid.UUID
	SourceColumn      value_objects.Column
	SourceIndex       int
	DestinationColumn value_objects.Column
	DestinationIndex  int
}

// IsNoop reports whether the task is dropped where it was picked up.
func (m Move) IsNoop() bool {
	return m.SourceColumn == m.DestinationColumn && m.SourceIndex == m.DestinationIndex
}

// Reorder computes the global ordering after m. The moved task is placed at
// DestinationIndex among the destination column's tasks; every other task keeps
// its relative order. The result is others followed by the destination column.
// The input slice is not modified. The boolean is false when nothing changed.
func Reorder(tasks []Task, m Move) ([]Task, bool) {
	if m.IsNoop() {
		return tasks, false
	}

	idx := IndexOf(tasks, m.TaskID)
	if idx < 0 {
		return tasks, false
	}

	moved := tasks[idx].Clone()
	moved.Column = m.DestinationColumn

	dest := make([]Task, 0, len(tasks))
	others := make([]Task, 0, len(tasks))
	for i, t := range tasks {
		if i == idx {
			continue
		}
		if t.Column == m.DestinationColumn {
			dest = append(dest, t)
		} else {
			others = append(others, t)
		}
	}

	at := min(max(m.DestinationIndex, 0), len(dest))
	dest = append(dest[:at], append([]Task{moved}, dest[at:]...)...)

	return append(others, dest...), true
}

// IndexOf returns the position of id in tasks, or -1.
func IndexOf(tasks []Task, id uuid.UUID) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// InColumn returns the tasks of col in global order.
func InColumn(tasks []Task, col value_objects.Column) []Task {
	out := make([]Task, 0)
	for _, t := range tasks {
		if t.Column == col {
			out = append(out, t)
		}
	}
	return out
}
