package task

import (
	"slices"
	"strings"
	"time"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
)

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Title       *string                   `json:"title,omitempty"`
	Description *string                   `json:"description,omitempty"`
	Priority    *value_objects.Priority   `json:"priority,omitempty"`
	Category    *value_objects.Category   `json:"category,omitempty"`
	Initiative  *value_objects.Initiative `json:"initiative,omitempty"`
	Estimate    *string                   `json:"estimate,omitempty"`
	Column      *value_objects.Column     `json:"column,omitempty"`
	DueDate     *string                   `json:"due_date,omitempty"`
	Tags        *[]string                 `json:"tags,omitempty"`
}

// ColumnPatch builds a patch that only moves the task.
func ColumnPatch(col value_objects.Column) Patch {
	return Patch{Column: &col}
}

// IsEmpty reports whether the patch sets no field.
func (p Patch) IsEmpty() bool {
	return len(p.FieldNames()) == 0
}

// FieldNames lists the set fields using their storage names.
func (p Patch) FieldNames() []string {
	var names []string
	if p.Title != nil {
		names = append(names, "title")
	}
	if p.Description != nil {
		names = append(names, "description")
	}
	if p.Priority != nil {
		names = append(names, "priority")
	}
	if p.Category != nil {
		names = append(names, "category")
	}
	if p.Initiative != nil {
		names = append(names, "initiative")
	}
	if p.Estimate != nil {
		names = append(names, "estimate")
	}
	if p.Column != nil {
		names = append(names, "column")
	}
	if p.DueDate != nil {
		names = append(names, "due_date")
	}
	if p.Tags != nil {
		names = append(names, "tags")
	}
	return names
}

// Normalize trims string fields so the local merge and the remote update agree.
func (p Patch) Normalize() Patch {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}
	p.Title = trim(p.Title)
	p.Description = trim(p.Description)
	p.Estimate = trim(p.Estimate)
	p.DueDate = trim(p.DueDate)
	if p.Tags != nil {
		tags := slices.Clone(*p.Tags)
		p.Tags = &tags
	}
	return p
}

// validate checks only the fields p sets. Loaded rows may carry values the
// board would not accept today, and an unrelated edit must still go through.
func (p Patch) validate() error {
	if p.Title != nil && *p.Title == "" {
		return ErrEmptyTitle
	}
	if p.Priority != nil && !p.Priority.IsValid() {
		return value_objects.ErrInvalidPriority
	}
	if p.Category != nil && !p.Category.IsValid() {
		return value_objects.ErrInvalidCategory
	}
	if p.Initiative != nil && !p.Initiative.IsValid() {
		return value_objects.ErrInvalidInitiative
	}
	if p.Column != nil && !p.Column.IsValid() {
		return value_objects.ErrInvalidColumn
	}
	if p.DueDate != nil {
		return validateDueDate(*p.DueDate)
	}
	return nil
}

// Apply merges the patch into t and returns the result. t is not modified.
func (p Patch) Apply(t Task, now time.Time) (Task, error) {
	if p.IsEmpty() {
		return Task{}, ErrEmptyPatch
	}
	p = p.Normalize()
	if err := p.validate(); err != nil {
		return Task{}, err
	}
	out := t.Clone()

	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	if p.Initiative != nil {
		out.Initiative = *p.Initiative
	}
	if p.Estimate != nil {
		out.Estimate = *p.Estimate
	}
	if p.Column != nil {
		out.Column = *p.Column
	}
	if p.DueDate != nil {
		out.DueDate = *p.DueDate
	}
	if p.Tags != nil {
		out.Tags = slices.Clone(*p.Tags)
	}

	out.UpdatedAt = now.UTC()
	return out, nil
}
