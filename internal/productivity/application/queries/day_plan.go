package queries

import (
	"context"
	"fmt"
	"time"

	planning "github.com/felixgeelhaar/grim/internal/planning/domain"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
)

// PlanReader is the daily side-data of the session store.
type PlanReader interface {
	ResolveBlock(key planning.BlockKey) []task.Task
	MicroWorkouts() planning.MicroWorkouts
	EatNotes() planning.EatNotes
}

// BlockDTO is one block of a day with its side-data.
type BlockDTO struct {
	Key          string    `json:"key"`
	Time         string    `json:"time"`
	Activity     string    `json:"activity"`
	Type         string    `json:"type"`
	Tasks        []TaskDTO `json:"tasks"`
	MicroWorkout bool      `json:"micro_workout"`
	EatNote      string    `json:"eat_note,omitempty"`
}

// DayPlanDTO is the full plan of one day.
type DayPlanDTO struct {
	Day    string     `json:"day"`
	Blocks []BlockDTO `json:"blocks"`
}

// DayPlanQuery selects a day ("Mon".."Fri"). Empty means today.
type DayPlanQuery struct {
	Day string
}

// DayPlanHandler renders daily plans.
type DayPlanHandler struct {
	reader   PlanReader
	schedule planning.Schedule
	now      func() time.Time
}

// NewDayPlanHandler creates a new DayPlanHandler.
func NewDayPlanHandler(reader PlanReader, schedule planning.Schedule) *DayPlanHandler {
	return &DayPlanHandler{reader: reader, schedule: schedule, now: time.Now}
}

// Handle executes the DayPlanQuery.
func (h *DayPlanHandler) Handle(_ context.Context, query DayPlanQuery) (*DayPlanDTO, error) {
	day := planning.Today(h.now())
	if query.Day != "" {
		d, err := planning.ParseDay(query.Day)
		if err != nil {
			return nil, fmt.Errorf("day %q: %w", query.Day, err)
		}
		day = d
	}
	plan := h.render(day, h.reader.MicroWorkouts(), h.reader.EatNotes())
	return &plan, nil
}

// Week renders Monday through Friday.
func (h *DayPlanHandler) Week(_ context.Context) ([]DayPlanDTO, error) {
	workouts, notes := h.reader.MicroWorkouts(), h.reader.EatNotes()
	out := make([]DayPlanDTO, 0, len(planning.Days()))
	for _, d := range planning.Days() {
		out = append(out, h.render(d, workouts, notes))
	}
	return out, nil
}

func (h *DayPlanHandler) render(day planning.Day, workouts planning.MicroWorkouts, notes planning.EatNotes) DayPlanDTO {
	plan := DayPlanDTO{Day: string(day)}
	for _, key := range h.schedule.Keys(day) {
		block, err := h.schedule.Block(key)
		if err != nil {
			continue
		}
		plan.Blocks = append(plan.Blocks, BlockDTO{
			Key:          key.String(),
			Time:         block.Time,
			Activity:     block.Activity,
			Type:         string(block.Type),
			Tasks:        toTaskDTOs(h.reader.ResolveBlock(key)),
			MicroWorkout: workouts[key],
			EatNote:      notes[key],
		})
	}
	return plan
}
