package value_objects

import (
	"errors"
	"strings"
)

// Priority is how urgent a task is. Larger is more urgent.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

var ErrInvalidPriority = errors.New("invalid priority value")

// priorityNames is indexed by Priority; slot 0 is the invalid zero value.
var priorityNames = [...]string{"", "low", "medium", "high", "critical"}

// Priorities lists every priority from most to least urgent, the order the
// board sorts and the dashboard counts them in.
func Priorities() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

// ParsePriority reads a wire name, ignoring case and surrounding space.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p := PriorityLow; p <= PriorityCritical; p++ {
		if priorityNames[p] == s {
			return p, nil
		}
	}
	return 0, ErrInvalidPriority
}

func (p Priority) String() string {
	if !p.IsValid() {
		return "unknown"
	}
	return priorityNames[p]
}

func (p Priority) IsValid() bool {
	return p >= PriorityLow && p <= PriorityCritical
}

// Weight is the priority's contribution to a focus score.
func (p Priority) Weight() int {
	if !p.IsValid() {
		return 0
	}
	return int(p)
}

func (p Priority) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, ErrInvalidPriority
	}
	return []byte(priorityNames[p]), nil
}

func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
