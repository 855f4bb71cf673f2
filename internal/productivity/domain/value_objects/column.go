package value_objects

import (
	"errors"
	"strings"
)

// Column is the kanban stage a task occupies.
type Column int

const (
	ColumnBacklog Column = iota + 1
	ColumnSprint
	ColumnInProgress
	ColumnReview
	ColumnDone
)

var ErrInvalidColumn = errors.New("invalid kanban column")

// Columns returns the board columns in left-to-right order.
func Columns() []Column {
	return []Column{ColumnBacklog, ColumnSprint, ColumnInProgress, ColumnReview, ColumnDone}
}

// ParseColumn creates a Column from its wire name.
func ParseColumn(s string) (Column, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "backlog":
		return ColumnBacklog, nil
	case "sprint":
		return ColumnSprint, nil
	case "in-progress":
		return ColumnInProgress, nil
	case "review":
		return ColumnReview, nil
	case "done":
		return ColumnDone, nil
	default:
		return 0, ErrInvalidColumn
	}
}

func (c Column) String() string {
	switch c {
	case ColumnBacklog:
		return "backlog"
	case ColumnSprint:
		return "sprint"
	case ColumnInProgress:
		return "in-progress"
	case ColumnReview:
		return "review"
	case ColumnDone:
		return "done"
	default:
		return "unknown"
	}
}

// Title returns the human-readable column heading.
func (c Column) Title() string {
	switch c {
	case ColumnBacklog:
		return "Backlog"
	case ColumnSprint:
		return "Sprint"
	case ColumnInProgress:
		return "In Progress"
	case ColumnReview:
		return "Review"
	case ColumnDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the column is one of the five board stages.
func (c Column) IsValid() bool {
	return c >= ColumnBacklog && c <= ColumnDone
}

func (c Column) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, ErrInvalidColumn
	}
	return []byte(c.String()), nil
}

func (c *Column) UnmarshalText(text []byte) error {
	parsed, err := ParseColumn(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
