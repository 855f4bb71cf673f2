package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
)

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestEngine() *PriorityEngine {
	e := NewPriorityEngine(DefaultPriorityEngineConfig())
	e.now = func() time.Time { return fixedNow }
	return e
}

func TestPriorityEngine_Score(t *testing.T) {
	t.Run("higher priority scores higher", func(t *testing.T) {
		engine := newTestEngine()

		low, _ := engine.Score(PrioritySignals{Priority: value_objects.PriorityLow})
		critical, _ := engine.Score(PrioritySignals{Priority: value_objects.PriorityCritical})

		assert.Greater(t, critical, low)
	})

	t.Run("unset priority gets a baseline", func(t *testing.T) {
		engine := newTestEngine()

		score, explanation := engine.Score(PrioritySignals{})

		assert.Greater(t, score, 0.0)
		assert.Contains(t, explanation, "priority=1.00")
	})

	t.Run("nearer due dates score higher", func(t *testing.T) {
		engine := newTestEngine()
		soon := fixedNow.Add(2 * time.Hour)
		later := fixedNow.Add(10 * 24 * time.Hour)

		scoreSoon, _ := engine.Score(PrioritySignals{Priority: value_objects.PriorityMedium, DueDate: &soon})
		scoreLater, _ := engine.Score(PrioritySignals{Priority: value_objects.PriorityMedium, DueDate: &later})

		assert.Greater(t, scoreSoon, scoreLater)
	})

	t.Run("overdue gets the full due factor", func(t *testing.T) {
		engine := newTestEngine()
		overdue := fixedNow.Add(-24 * time.Hour)

		_, explanation := engine.Score(PrioritySignals{Priority: value_objects.PriorityMedium, DueDate: &overdue})

		assert.Contains(t, explanation, "due=3.00")
	})

	t.Run("shorter work scores higher", func(t *testing.T) {
		engine := newTestEngine()

		short, _ := engine.Score(PrioritySignals{Priority: value_objects.PriorityMedium, Estimate: 30 * time.Minute})
		long, _ := engine.Score(PrioritySignals{Priority: value_objects.PriorityMedium, Estimate: 4 * time.Hour})

		assert.Greater(t, short, long)
	})

	t.Run("work under way scores higher", func(t *testing.T) {
		engine := newTestEngine()

		backlog, _ := engine.Score(PrioritySignals{Priority: value_objects.PriorityMedium, Column: value_objects.ColumnBacklog})
		inProgress, explanation := engine.Score(PrioritySignals{Priority: value_objects.PriorityMedium, Column: value_objects.ColumnInProgress})

		assert.Greater(t, inProgress, backlog)
		assert.Contains(t, explanation, "stage=1.00")
	})
}

func TestPriorityEngine_Rank(t *testing.T) {
	engine := newTestEngine()
	mk := func(title string, p value_objects.Priority, col value_objects.Column, due string) task.Task {
		return task.Task{ID: uuid.New(), Title: title, Priority: p, Column: col, DueDate: due}
	}
	tasks := []task.Task{
		mk("low backlog", value_objects.PriorityLow, value_objects.ColumnBacklog, ""),
		mk("critical done", value_objects.PriorityCritical, value_objects.ColumnDone, ""),
		mk("high in progress", value_objects.PriorityHigh, value_objects.ColumnInProgress, ""),
		mk("medium due tomorrow", value_objects.PriorityMedium, value_objects.ColumnSprint, "2026-03-03"),
	}

	ranked := engine.Rank(tasks, 0)
	require.Len(t, ranked, 3)
	for _, r := range ranked {
		assert.NotEqual(t, "critical done", r.Task.Title)
	}
	assert.Equal(t, "low backlog", ranked[2].Task.Title)
	assert.GreaterOrEqual(t, ranked[0].Score, ranked[1].Score)

	top := engine.Rank(tasks, 1)
	require.Len(t, top, 1)
	assert.Equal(t, ranked[0].Task.ID, top[0].Task.ID)
}

func TestSignalsFor(t *testing.T) {
	s := SignalsFor(task.Task{Priority: value_objects.PriorityHigh, DueDate: "2026-03-10", Estimate: "90 min"})
	require.NotNil(t, s.DueDate)
	assert.Equal(t, 10, s.DueDate.Day())
	assert.Equal(t, 90*time.Minute, s.Estimate)

	s = SignalsFor(task.Task{DueDate: "soon", Estimate: "a while"})
	assert.Nil(t, s.DueDate)
	assert.Zero(t, s.Estimate)
}

func TestParseEstimate(t *testing.T) {
	cases := map[string]time.Duration{
		"60 min":  time.Hour,
		"45":      45 * time.Minute,
		"1.5h":    90 * time.Minute,
		"2 hours": 2 * time.Hour,
		" 30m ":   30 * time.Minute,
		"":        0,
		"later":   0,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseEstimate(in), in)
	}
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.5, clamp01(0.5))
	assert.Equal(t, 0.0, clamp01(-0.1))
	assert.Equal(t, 1.0, clamp01(1.1))
}

func TestPriorityEngine_effortScore(t *testing.T) {
	engine := newTestEngine()

	assert.Equal(t, 1.0, engine.effortScore(0))
	assert.Equal(t, 0.5, engine.effortScore(4*time.Hour))
	assert.Equal(t, 0.0, engine.effortScore(8*time.Hour))
}
