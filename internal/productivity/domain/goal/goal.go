package goal

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
	"github.com/google/uuid"
)

var (
	ErrEmptyTitle         = errors.New("goal title cannot be empty")
	ErrProgressOutOfRange = errors.New("goal progress must be between 0 and 100")
	ErrSlotOccupied       = errors.New("goal slot already occupied")
)

const (
	MinProgress = 0
	MaxProgress = 100
)

// Goal is an objective pinned to one (horizon, category) slot.
type Goal struct {
	ID        uuid.UUID              `json:"id"`
	UserID    uuid.UUID              `json:"user_id"`
	Title     string                 `json:"title"`
	Horizon   value_objects.Horizon  `json:"horizon"`
	Category  value_objects.Category `json:"category"`
	Progress  int                    `json:"progress"`
	Reason    string                 `json:"reason,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Fields holds the user-supplied attributes of a new goal.
type Fields struct {
	Title    string
	Horizon  value_objects.Horizon
	Category value_objects.Category
	Progress int
	Reason   string
}

// NewGoal validates fields and builds a goal owned by userID.
// Slot occupancy is checked separately with CanAdd.
func NewGoal(id, userID uuid.UUID, f Fields, now time.Time) (Goal, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return Goal{}, ErrEmptyTitle
	}
	if !f.Horizon.IsValid() {
		return Goal{}, value_objects.ErrInvalidHorizon
	}
	if !f.Category.IsValid() {
		return Goal{}, value_objects.ErrInvalidCategory
	}
	if err := ValidateProgress(f.Progress); err != nil {
		return Goal{}, err
	}

	return Goal{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Horizon:   f.Horizon,
		Category:  f.Category,
		Progress:  f.Progress,
		Reason:    strings.TrimSpace(f.Reason),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

// ValidateProgress rejects values outside [MinProgress, MaxProgress].
func ValidateProgress(p int) error {
	if p < MinProgress || p > MaxProgress {
		return fmt.Errorf("%w: %d", ErrProgressOutOfRange, p)
	}
	return nil
}

// WithProgress returns a copy of g with the new progress value.
func (g Goal) WithProgress(p int, now time.Time) (Goal, error) {
	if err := ValidateProgress(p); err != nil {
		return Goal{}, err
	}
	g.Progress = p
	g.UpdatedAt = now.UTC()
	return g, nil
}

// Slot returns the grid coordinate the goal occupies.
func (g Goal) Slot() Slot {
	return Slot{Horizon: g.Horizon, Category: g.Category}
}

// AverageProgress is the mean progress across goals rounded to the nearest
// integer, 0 when there are none.
func AverageProgress(goals []Goal) int {
	if len(goals) == 0 {
		return 0
	}
	sum := 0
	for _, g := range goals {
		sum += g.Progress
	}
	return int(math.Round(float64(sum) / float64(len(goals))))
}
