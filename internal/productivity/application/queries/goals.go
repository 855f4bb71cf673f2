package queries

import (
	"context"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/goal"
)

// GoalReader is the goal side of the session store.
type GoalReader interface {
	Goals() []goal.Goal
}

// GoalCellDTO is one slot of the grid. Goal is nil when the slot is free.
type GoalCellDTO struct {
	Horizon  string   `json:"horizon"`
	Category string   `json:"category"`
	Goal     *GoalDTO `json:"goal,omitempty"`
}

// GoalGridDTO is the full 3×2 grid.
type GoalGridDTO struct {
	Cells           []GoalCellDTO `json:"cells"`
	AverageProgress int           `json:"average_progress"`
}

// GoalGridHandler returns the goal grid.
type GoalGridHandler struct {
	reader GoalReader
}

// NewGoalGridHandler creates a new GoalGridHandler.
func NewGoalGridHandler(reader GoalReader) *GoalGridHandler {
	return &GoalGridHandler{reader: reader}
}

// Handle lists the six slots in grid order.
func (h *GoalGridHandler) Handle(_ context.Context) (*GoalGridDTO, error) {
	goals := h.reader.Goals()
	bySlot := goal.OccupiedSlots(goals)

	grid := &GoalGridDTO{AverageProgress: goal.AverageProgress(goals)}
	for _, slot := range goal.Slots() {
		cell := GoalCellDTO{Horizon: slot.Horizon.String(), Category: slot.Category.String()}
		if g, ok := bySlot[slot]; ok {
			dto := toGoalDTO(g)
			cell.Goal = &dto
		}
		grid.Cells = append(grid.Cells, cell)
	}
	return grid, nil
}
