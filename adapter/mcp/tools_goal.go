package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/grim/internal/productivity/application/commands"
	"github.com/felixgeelhaar/grim/internal/productivity/application/queries"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/goal"
)

type goalSetInput struct {
	Horizon  string `json:"horizon" jsonschema:"required"`
	Category string `json:"category" jsonschema:"required"`
	Title    string `json:"title" jsonschema:"required"`
	Progress int    `json:"progress,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type goalProgressInput struct {
	GoalID   string `json:"goal_id" jsonschema:"required"`
	Progress int    `json:"progress"`
}

type goalIDInput struct {
	GoalID string `json:"goal_id" jsonschema:"required"`
}

func registerGoalTools(srv *mcp.Server, deps ToolDependencies) error {
	srv.Tool("goal.grid").
		Description("Show the goal grid: one slot per horizon (yearly, monthly, weekly) and category").
		Handler(func(ctx context.Context, input struct{}) (*queries.GoalGridDTO, error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			return app.GoalGridHandler.Handle(ctx)
		})

	srv.Tool("goal.set").
		Description("Place a goal in a free slot of the grid").
		Handler(func(ctx context.Context, input goalSetInput) (*mutation[goal.Goal], error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			g, err := app.GoalHandler.Create(ctx, commands.CreateGoalCommand{
				Title:    input.Title,
				Horizon:  input.Horizon,
				Category: input.Category,
				Progress: input.Progress,
				Reason:   input.Reason,
			})
			if err != nil {
				return nil, err
			}
			return commit(ctx, app, g)
		})

	srv.Tool("goal.progress").
		Description("Set a goal's progress (0 to 100)").
		Handler(func(ctx context.Context, input goalProgressInput) (*mutation[goal.Goal], error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			id, err := resolveGoal(app, input.GoalID)
			if err != nil {
				return nil, err
			}
			g, err := app.GoalHandler.UpdateProgress(ctx, commands.UpdateGoalProgressCommand{
				GoalID:   id,
				Progress: input.Progress,
			})
			if err != nil {
				return nil, err
			}
			return commit(ctx, app, g)
		})

	srv.Tool("goal.delete").
		Description("Delete a goal and free its slot").
		Handler(func(ctx context.Context, input goalIDInput) (*mutation[string], error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			id, err := resolveGoal(app, input.GoalID)
			if err != nil {
				return nil, err
			}
			if err := app.GoalHandler.Delete(ctx, commands.DeleteGoalCommand{GoalID: id}); err != nil {
				return nil, err
			}
			return commit(ctx, app, id)
		})

	return nil
}
