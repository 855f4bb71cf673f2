package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/goal"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
)

// ErrBoardNotEmpty is returned when seeding a board that already has data.
var ErrBoardNotEmpty = errors.New("board already has tasks or goals")

// SeedEngine is what seeding needs from the engine.
type SeedEngine interface {
	TaskAdder
	GoalEngine
}

// SeedReader reports what the board already holds. *store.Store satisfies it.
type SeedReader interface {
	Tasks() []task.Task
	Goals() []goal.Goal
}

// SeedCommand fills a board with the sample data.
type SeedCommand struct {
	// Force seeds even when the board is not empty.
	Force bool
}

// SeedResult counts what was added.
type SeedResult struct {
	Tasks        int
	Goals        int
	SkippedGoals int
}

// SeedHandler handles the SeedCommand.
type SeedHandler struct {
	engine SeedEngine
	board  SeedReader
}

// NewSeedHandler creates a new SeedHandler.
func NewSeedHandler(engine SeedEngine, board SeedReader) *SeedHandler {
	return &SeedHandler{engine: engine, board: board}
}

// Handle adds every sample task and every sample goal whose slot is free.
func (h *SeedHandler) Handle(ctx context.Context, cmd SeedCommand) (*SeedResult, error) {
	if !cmd.Force && (len(h.board.Tasks()) > 0 || len(h.board.Goals()) > 0) {
		return nil, ErrBoardNotEmpty
	}

	create := NewCreateTaskHandler(h.engine)
	goals := NewGoalHandler(h.engine)
	result := &SeedResult{}

	for _, c := range SampleTasks() {
		if _, err := create.Handle(ctx, c); err != nil {
			return result, fmt.Errorf("seed task %q: %w", c.Title, err)
		}
		result.Tasks++
	}
	for _, c := range SampleGoals() {
		if _, err := goals.Create(ctx, c); err != nil {
			if errors.Is(err, goal.ErrSlotOccupied) {
				result.SkippedGoals++
				continue
			}
			return result, fmt.Errorf("seed goal %q: %w", c.Title, err)
		}
		result.Goals++
	}
	return result, nil
}

// SampleTasks is the demo board, in board order.
func SampleTasks() []CreateTaskCommand {
	t := func(title, priority, initiative, estimate, column, tags string) CreateTaskCommand {
		return CreateTaskCommand{
			Title:      title,
			Priority:   priority,
			Category:   "professional",
			Initiative: initiative,
			Estimate:   estimate,
			Column:     column,
			Tags:       tags,
		}
	}
	return []CreateTaskCommand{
		t("Set up automated onboarding email sequence", "high", "Member Automations", "60 min", "backlog", "automation,email"),
		t("Fix login redirect bug on mobile", "critical", "Bug Fixes", "30 min", "backlog", "bug,mobile"),
		t("Write campaign copy for Q1 launch", "high", "Campaign Writing", "60 min", "backlog", "copy,marketing"),
		t("Record podcast episode #12", "medium", "THE GRIM Podcast", "60 min", "backlog", "content,podcast"),
		t("Design affiliate landing page", "medium", "Affiliate Setup", "60 min", "backlog", "design,affiliate"),
		t("Implement customer retention dashboard", "high", "Retain Customers", "60 min", "backlog", "dashboard,retention"),
		t("Create GRIM Week promo video script", "medium", "GRIM Week", "45 min", "backlog", "video,event"),
		t("Set up churn prediction alerts", "high", "Retain Customers", "60 min", "backlog", "analytics,retention"),
		t("Build member activity tracking", "medium", "New Features", "60 min", "backlog", "feature,tracking"),
		t("Edit and publish tutorial video", "low", "Videos", "60 min", "backlog", "video,content"),

		t("Automate welcome message flow", "high", "Member Automations", "45 min", "sprint", "automation"),
		t("Fix payment processing edge case", "critical", "Bug Fixes", "30 min", "sprint", "bug,payments"),
		t("Draft newsletter for this week", "medium", "Campaign Writing", "30 min", "sprint", "content"),
		t("Plan GRIM Week speaker lineup", "high", "GRIM Week", "60 min", "sprint", "event,planning"),

		t("Build customer health score API", "high", "Retain Customers", "60 min", "in-progress", "api,retention"),
		t("Record podcast intro segment", "medium", "THE GRIM Podcast", "30 min", "in-progress", "podcast"),

		t("Review affiliate agreement terms", "medium", "Affiliate Setup", "30 min", "review", "legal,affiliate"),

		t("Set up CI/CD pipeline", "high", "General", "60 min", "done", "devops"),
		t("Launch member survey", "medium", "Retain Customers", "30 min", "done", "survey"),
	}
}

// SampleGoals lists demo goals. Several share a slot; only the first of
// each slot can be placed.
func SampleGoals() []CreateGoalCommand {
	g := func(title, horizon, category string, progress int) CreateGoalCommand {
		return CreateGoalCommand{Title: title, Horizon: horizon, Category: category, Progress: progress}
	}
	return []CreateGoalCommand{
		g("Scale Member Automations to 1000 users", "yearly", "professional", 35),
		g("Launch THE GRIM Podcast (50 episodes)", "yearly", "professional", 24),
		g("Establish daily deep work habit", "yearly", "private", 72),
		g("Close 3 new affiliate partnerships", "monthly", "professional", 33),
		g("Ship customer health score feature", "monthly", "professional", 55),
		g("Complete sprint backlog (12 tasks)", "weekly", "professional", 42),
		g("5 deep work sessions", "weekly", "private", 60),
		g("Morning & evening habit streak", "weekly", "private", 85),
	}
}
