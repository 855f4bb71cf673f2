package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/grim/internal/productivity/application/commands"
	"github.com/felixgeelhaar/grim/internal/productivity/application/queries"
)

type planDayInput struct {
	// Day is "Mon" to "Fri"; empty means today.
	Day string `json:"day,omitempty"`
}

type planBlockTaskInput struct {
	Block  string `json:"block" jsonschema:"required"`
	TaskID string `json:"task_id" jsonschema:"required"`
}

type planBlockInput struct {
	Block string `json:"block" jsonschema:"required"`
}

type planEatInput struct {
	Block string `json:"block" jsonschema:"required"`
	Text  string `json:"text"`
}

type planChange struct {
	Block   string `json:"block"`
	Changed bool   `json:"changed"`
}

// Plan side-data never reaches the remote store, so these tools do not
// flush the commit queue.
func registerPlanTools(srv *mcp.Server, deps ToolDependencies) error {
	srv.Tool("plan.day").
		Description("Show the blocks of one day with assigned tasks, workouts and meal notes").
		Handler(func(ctx context.Context, input planDayInput) (*queries.DayPlanDTO, error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			return app.DayPlanHandler.Handle(ctx, queries.DayPlanQuery{Day: input.Day})
		})

	srv.Tool("plan.week").
		Description("Show the plan of every weekday").
		Handler(func(ctx context.Context, input struct{}) ([]queries.DayPlanDTO, error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			return app.DayPlanHandler.Week(ctx)
		})

	srv.Tool("plan.assign").
		Description("Assign a task to a block such as Mon-2").
		Handler(func(ctx context.Context, input planBlockTaskInput) (*planChange, error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			id, err := resolveTask(app, input.TaskID)
			if err != nil {
				return nil, err
			}
			added, err := app.PlanHandler.Assign(ctx, commands.BlockTaskCommand{Block: input.Block, TaskID: id})
			if err != nil {
				return nil, err
			}
			return &planChange{Block: input.Block, Changed: added}, nil
		})

	srv.Tool("plan.unassign").
		Description("Remove a task from a block").
		Handler(func(ctx context.Context, input planBlockTaskInput) (*planChange, error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			id, err := resolveTask(app, input.TaskID)
			if err != nil {
				return nil, err
			}
			removed, err := app.PlanHandler.Unassign(ctx, commands.BlockTaskCommand{Block: input.Block, TaskID: id})
			if err != nil {
				return nil, err
			}
			return &planChange{Block: input.Block, Changed: removed}, nil
		})

	srv.Tool("plan.workout").
		Description("Toggle the micro-workout flag of a block").
		Handler(func(ctx context.Context, input planBlockInput) (map[string]any, error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			on, err := app.PlanHandler.ToggleWorkout(ctx, commands.ToggleWorkoutCommand{Block: input.Block})
			if err != nil {
				return nil, err
			}
			return map[string]any{"block": input.Block, "micro_workout": on}, nil
		})

	srv.Tool("plan.eat").
		Description("Set the meal note of a block").
		Handler(func(ctx context.Context, input planEatInput) (map[string]any, error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			if err := app.PlanHandler.SetEatNote(ctx, commands.EatNoteCommand{Block: input.Block, Text: input.Text}); err != nil {
				return nil, err
			}
			return map[string]any{"block": input.Block, "eat_note": input.Text}, nil
		})

	return nil
}
