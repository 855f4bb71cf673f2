package services

import (
	"cmp"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
)

// PriorityEngineConfig tunes how signals combine into a score.
type PriorityEngineConfig struct {
	PriorityWeight float64
	DueWeight      float64
	EffortWeight   float64
	StageWeight    float64
}

// DefaultPriorityEngineConfig returns a production-friendly configuration.
func DefaultPriorityEngineConfig() PriorityEngineConfig {
	return PriorityEngineConfig{
		PriorityWeight: 2.0,
		DueWeight:      3.0,
		EffortWeight:   1.5,
		StageWeight:    1.0,
	}
}

// PrioritySignals contains the attributes that influence a task's score.
type PrioritySignals struct {
	Priority value_objects.Priority
	DueDate  *time.Time
	Estimate time.Duration
	Column   value_objects.Column
}

// SignalsFor extracts the signals of t. Unparseable due dates and
// estimates count as absent.
func SignalsFor(t task.Task) PrioritySignals {
	s := PrioritySignals{
		Priority: t.Priority,
		Estimate: ParseEstimate(t.Estimate),
		Column:   t.Column,
	}
	if due, err := time.Parse(task.DueDateLayout, t.DueDate); err == nil {
		s.DueDate = &due
	}
	return s
}

// PriorityEngine computes focus scores from multiple signals.
type PriorityEngine struct {
	config PriorityEngineConfig
	now    func() time.Time
}

// NewPriorityEngine creates a new engine with the given configuration.
func NewPriorityEngine(cfg PriorityEngineConfig) *PriorityEngine {
	return &PriorityEngine{config: cfg, now: time.Now}
}

// Score computes a score and human-readable explanation for the provided signals.
func (e *PriorityEngine) Score(signals PrioritySignals) (float64, string) {
	priorityBase := float64(signals.Priority.Weight())
	if priorityBase == 0 {
		priorityBase = 0.5
	}

	dueFactor := e.dueScore(signals.DueDate)
	effortFactor := e.effortScore(signals.Estimate)
	stage := stageScore(signals.Column)

	score := priorityBase*e.config.PriorityWeight +
		dueFactor*e.config.DueWeight +
		effortFactor*e.config.EffortWeight +
		stage*e.config.StageWeight

	score = math.Round(score*100) / 100

	explanation := fmt.Sprintf(
		"priority=%.2f due=%.2f effort=%.2f stage=%.2f",
		priorityBase*e.config.PriorityWeight,
		dueFactor*e.config.DueWeight,
		effortFactor*e.config.EffortWeight,
		stage*e.config.StageWeight,
	)

	return score, explanation
}

// RankedTask is a task with its focus score.
type RankedTask struct {
	Task        task.Task
	Score       float64
	Explanation string
}

// Rank scores every task that is not done and returns the best limit of
// them, highest first. Ties keep board order. limit <= 0 returns all.
func (e *PriorityEngine) Rank(tasks []task.Task, limit int) []RankedTask {
	out := make([]RankedTask, 0, len(tasks))
	for _, t := range tasks {
		if t.Column == value_objects.ColumnDone {
			continue
		}
		score, why := e.Score(SignalsFor(t))
		out = append(out, RankedTask{Task: t, Score: score, Explanation: why})
	}
	slices.SortStableFunc(out, func(a, b RankedTask) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (e *PriorityEngine) dueScore(due *time.Time) float64 {
	if due == nil {
		return 0
	}
	days := due.Sub(e.now()).Hours() / 24
	if days < 0 {
		return 1
	}

	return clamp01((14.0 - days) / 14.0)
}

func (e *PriorityEngine) effortScore(estimate time.Duration) float64 {
	if estimate <= 0 {
		return 1
	}
	return clamp01(1 - (estimate.Hours() / 8.0))
}

// stageScore favours work that is already under way.
func stageScore(col value_objects.Column) float64 {
	switch col {
	case value_objects.ColumnInProgress:
		return 1
	case value_objects.ColumnReview:
		return 0.75
	case value_objects.ColumnSprint:
		return 0.5
	default:
		return 0
	}
}

var estimatePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(m|min|mins|minutes?|h|hr|hrs|hours?)?$`)

// ParseEstimate reads free-form estimates such as "60 min", "1.5h" or "45".
// Bare numbers are minutes. Anything else yields 0.
func ParseEstimate(s string) time.Duration {
	m := estimatePattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return 0
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	unit := time.Minute
	if strings.HasPrefix(m[2], "h") {
		unit = time.Hour
	}
	return time.Duration(n * float64(unit))
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
