package queries

import (
	"context"
	"math"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
)

// InitiativeDTO summarises the tasks of one initiative.
type InitiativeDTO struct {
	Name     string `json:"name"`
	Tasks    int    `json:"tasks"`
	Done     int    `json:"done"`
	Active   int    `json:"active"`
	Progress int    `json:"progress"`
}

// InitiativesHandler breaks the board down by initiative.
type InitiativesHandler struct {
	reader TaskReader
}

// NewInitiativesHandler creates a new InitiativesHandler.
func NewInitiativesHandler(reader TaskReader) *InitiativesHandler {
	return &InitiativesHandler{reader: reader}
}

// Handle returns every initiative in its fixed order, including those
// without tasks. Active counts in-progress tasks; Progress is the rounded
// done percentage.
func (h *InitiativesHandler) Handle(_ context.Context) ([]InitiativeDTO, error) {
	counts := make(map[value_objects.Initiative]*InitiativeDTO)
	all := value_objects.Initiatives()
	out := make([]InitiativeDTO, len(all))
	for i, ini := range all {
		out[i].Name = ini.String()
		counts[ini] = &out[i]
	}

	for _, t := range h.reader.Tasks() {
		row, ok := counts[t.Initiative]
		if !ok {
			continue
		}
		row.Tasks++
		switch t.Column {
		case value_objects.ColumnDone:
			row.Done++
		case value_objects.ColumnInProgress:
			row.Active++
		}
	}

	for i := range out {
		out[i].Progress = percent(out[i].Done, out[i].Tasks)
	}
	return out, nil
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
