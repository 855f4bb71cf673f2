package queries

import (
	"context"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
)

// ColumnDTO is one board column.
type ColumnDTO struct {
	Column string    `json:"column"`
	Title  string    `json:"title"`
	Tasks  []TaskDTO `json:"tasks"`
}

// BoardQuery filters the board. Columns stay in place even when empty.
type BoardQuery struct {
	TaskFilter
}

// BoardHandler handles the BoardQuery.
type BoardHandler struct {
	reader TaskReader
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(reader TaskReader) *BoardHandler {
	return &BoardHandler{reader: reader}
}

// Handle returns every column left to right with the matching tasks.
func (h *BoardHandler) Handle(_ context.Context, query BoardQuery) ([]ColumnDTO, error) {
	match, err := query.matcher()
	if err != nil {
		return nil, err
	}

	tasks := h.reader.Tasks()
	cols := value_objects.Columns()
	out := make([]ColumnDTO, 0, len(cols))
	for _, c := range cols {
		view := ColumnDTO{Column: c.String(), Title: c.Title(), Tasks: make([]TaskDTO, 0)}
		for _, t := range task.InColumn(tasks, c) {
			if match(t) {
				view.Tasks = append(view.Tasks, toTaskDTO(t))
			}
		}
		out = append(out, view)
	}
	return out, nil
}
