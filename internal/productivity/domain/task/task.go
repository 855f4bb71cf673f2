package task

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
	"github.com/google/uuid"
)

var (
	ErrEmptyTitle     = errors.New("task title cannot be empty")
	ErrInvalidDueDate = errors.New("due date must use YYYY-MM-DD")
	ErrEmptyPatch     = errors.New("task patch has no fields")
)

// DueDateLayout is the wire format of Task.DueDate.
const DueDateLayout = "2006-01-02"

// Task is a complete board record. Values are copied in and out of the store,
// so a Task is never observed half-written.
type Task struct {
	ID          uuid.UUID                `json:"id"`
	UserID      uuid.UUID                `json:"user_id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description,omitempty"`
	Priority    value_objects.Priority   `json:"priority"`
	Category    value_objects.Category   `json:"category"`
	Initiative  value_objects.Initiative `json:"initiative"`
	Estimate    string                   `json:"estimate"`
	Column      value_objects.Column     `json:"column"`
	DueDate     string                   `json:"due_date,omitempty"`
	Tags        []string                 `json:"tags,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// Fields holds the user-supplied attributes of a new task.
// Zero enum values fall back to the board defaults.
type Fields struct {
	Title       string
	Description string
	Priority    value_objects.Priority
	Category    value_objects.Category
	Initiative  value_objects.Initiative
	Estimate    string
	Column      value_objects.Column
	DueDate     string
	Tags        []string
}

// NewTask validates fields and builds a task owned by userID.
func NewTask(id, userID uuid.UUID, f Fields, now time.Time) (Task, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}

	t := Task{
		ID:          id,
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(f.Description),
		Priority:    f.Priority,
		Category:    f.Category,
		Initiative:  f.Initiative,
		Estimate:    strings.TrimSpace(f.Estimate),
		Column:      f.Column,
		DueDate:     strings.TrimSpace(f.DueDate),
		Tags:        slices.Clone(f.Tags),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}

	if t.Priority == 0 {
		t.Priority = value_objects.PriorityMedium
	}
	if t.Category == 0 {
		t.Category = value_objects.CategoryProfessional
	}
	if t.Initiative == 0 {
		t.Initiative = value_objects.InitiativeGeneral
	}
	if t.Column == 0 {
		t.Column = value_objects.ColumnBacklog
	}

	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Validate checks every field invariant of a task.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if !t.Priority.IsValid() {
		return value_objects.ErrInvalidPriority
	}
	if !t.Category.IsValid() {
		return value_objects.ErrInvalidCategory
	}
	if !t.Initiative.IsValid() {
		return value_objects.ErrInvalidInitiative
	}
	if !t.Column.IsValid() {
		return value_objects.ErrInvalidColumn
	}
	if err := validateDueDate(t.DueDate); err != nil {
		return err
	}
	return nil
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	t.Tags = slices.Clone(t.Tags)
	return t
}

func validateDueDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(DueDateLayout, s); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDueDate, s)
	}
	return nil
}
