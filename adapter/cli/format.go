package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/grim/internal/productivity/application/queries"
)

// PriorityIcon returns a short marker for a priority name.
func PriorityIcon(priority string) string {
	switch priority {
	case "critical":
		return "[!!!]"
	case "high":
		return "[!!]"
	case "medium":
		return "[!]"
	default:
		return "[ ]"
	}
}

// ShortID returns the first block of a UUID string.
func ShortID(id fmt.Stringer) string {
	s := id.String()
	if i := strings.IndexByte(s, '-'); i > 0 {
		return s[:i]
	}
	return s
}

// PrintTaskLine writes a one-line summary of t.
func PrintTaskLine(w io.Writer, indent string, t queries.TaskDTO) {
	fmt.Fprintf(w, "%s%s %s  (%s)\n", indent, PriorityIcon(t.Priority), t.Title, ShortID(t.ID))
	details := make([]string, 0, 3)
	if t.Initiative != "" {
		details = append(details, t.Initiative)
	}
	if t.Estimate != "" {
		details = append(details, t.Estimate)
	}
	if t.DueDate != "" {
		details = append(details, "due "+t.DueDate)
	}
	if len(details) > 0 {
		fmt.Fprintf(w, "%s    %s\n", indent, strings.Join(details, " | "))
	}
}

// Rule writes a horizontal separator.
func Rule(w io.Writer, width int) {
	fmt.Fprintln(w, strings.Repeat("-", width))
}

// ProgressBar renders percent (0 to 100) as a bar of width cells.
func ProgressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
