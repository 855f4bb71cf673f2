package goal_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/goal"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

func newGoal(t *testing.T, h value_objects.Horizon, c value_objects.Category, title string) goal.Goal {
	t.Helper()
	g, err := goal.NewGoal(uuid.New(), uuid.New(), goal.Fields{Title: title, Horizon: h, Category: c}, now)
	require.NoError(t, err)
	return g
}

func TestNewGoal(t *testing.T) {
	g, err := goal.NewGoal(uuid.New(), uuid.New(), goal.Fields{
		Title:    "  Launch podcast  ",
		Horizon:  value_objects.HorizonYearly,
		Category: value_objects.CategoryProfessional,
		Progress: 25,
		Reason:   "reach",
	}, now)

	require.NoError(t, err)
	assert.Equal(t, "Launch podcast", g.Title)
	assert.Equal(t, 25, g.Progress)
	assert.Equal(t, goal.Slot{Horizon: value_objects.HorizonYearly, Category: value_objects.CategoryProfessional}, g.Slot())
}

func TestNewGoal_Validation(t *testing.T) {
	tests := []struct {
		name    string
		fields  goal.Fields
		wantErr error
	}{
		{"blank title", goal.Fields{Title: " ", Horizon: value_objects.HorizonWeekly, Category: value_objects.CategoryPrivate}, goal.ErrEmptyTitle},
		{"missing horizon", goal.Fields{Title: "x", Category: value_objects.CategoryPrivate}, value_objects.ErrInvalidHorizon},
		{"missing category", goal.Fields{Title: "x", Horizon: value_objects.HorizonWeekly}, value_objects.ErrInvalidCategory},
		{"negative progress", goal.Fields{Title: "x", Horizon: value_objects.HorizonWeekly, Category: value_objects.CategoryPrivate, Progress: -1}, goal.ErrProgressOutOfRange},
		{"progress above 100", goal.Fields{Title: "x", Horizon: value_objects.HorizonWeekly, Category: value_objects.CategoryPrivate, Progress: 101}, goal.ErrProgressOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := goal.NewGoal(uuid.New(), uuid.New(), tt.fields, now)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWithProgress(t *testing.T) {
	g := newGoal(t, value_objects.HorizonMonthly, value_objects.CategoryPrivate, "Run 100km")

	updated, err := g.WithProgress(100, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 100, updated.Progress)
	assert.Equal(t, 0, g.Progress)

	_, err = g.WithProgress(150, now)
	assert.ErrorIs(t, err, goal.ErrProgressOutOfRange)
}

func TestCanAdd(t *testing.T) {
	goals := []goal.Goal{newGoal(t, value_objects.HorizonWeekly, value_objects.CategoryProfessional, "X")}

	assert.False(t, goal.CanAdd(goals, value_objects.HorizonWeekly, value_objects.CategoryProfessional))
	assert.True(t, goal.CanAdd(goals, value_objects.HorizonWeekly, value_objects.CategoryPrivate))
	assert.True(t, goal.CanAdd(goals, value_objects.HorizonMonthly, value_objects.CategoryProfessional))
	assert.True(t, goal.CanAdd(nil, value_objects.HorizonYearly, value_objects.CategoryPrivate))
}

func TestOccupiedSlots(t *testing.T) {
	first := newGoal(t, value_objects.HorizonYearly, value_objects.CategoryPrivate, "first")
	dup := newGoal(t, value_objects.HorizonYearly, value_objects.CategoryPrivate, "dup")
	other := newGoal(t, value_objects.HorizonWeekly, value_objects.CategoryProfessional, "other")

	occupied := goal.OccupiedSlots([]goal.Goal{first, dup, other})

	assert.Len(t, occupied, 2)
	assert.Equal(t, "first", occupied[first.Slot()].Title)
	assert.Equal(t, "other", occupied[other.Slot()].Title)
}

func TestSlots(t *testing.T) {
	slots := goal.Slots()
	require.Len(t, slots, 6)
	assert.Equal(t, "yearly/professional", slots[0].String())
	assert.Equal(t, "weekly/private", slots[5].String())
}

func TestAverageProgress(t *testing.T) {
	assert.Equal(t, 0, goal.AverageProgress(nil))

	a := newGoal(t, value_objects.HorizonYearly, value_objects.CategoryPrivate, "a")
	b := newGoal(t, value_objects.HorizonWeekly, value_objects.CategoryPrivate, "b")
	a.Progress, b.Progress = 40, 61

	assert.Equal(t, 51, goal.AverageProgress([]goal.Goal{a, b}))
}
