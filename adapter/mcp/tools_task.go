package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/grim/internal/productivity/application/commands"
	"github.com/felixgeelhaar/grim/internal/productivity/application/queries"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
)

type taskCreateInput struct {
	Title       string `json:"title" jsonschema:"required"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Category    string `json:"category,omitempty"`
	Initiative  string `json:"initiative,omitempty"`
	Estimate    string `json:"estimate,omitempty"`
	Column      string `json:"column,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	Tags        string `json:"tags,omitempty"`
}

type taskListInput struct {
	Search     string `json:"search,omitempty"`
	Priority   string `json:"priority,omitempty"`
	Category   string `json:"category,omitempty"`
	Initiative string `json:"initiative,omitempty"`
	Column     string `json:"column,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

type taskIDInput struct {
	TaskID string `json:"task_id" jsonschema:"required"`
}

type taskUpdateInput struct {
	TaskID      string  `json:"task_id" jsonschema:"required"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Category    *string `json:"category,omitempty"`
	Initiative  *string `json:"initiative,omitempty"`
	Estimate    *string `json:"estimate,omitempty"`
	Column      *string `json:"column,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Tags        *string `json:"tags,omitempty"`
}

type taskMoveInput struct {
	TaskID string `json:"task_id" jsonschema:"required"`
	Column string `json:"column" jsonschema:"required"`
}

type taskReorderInput struct {
	TaskID string `json:"task_id" jsonschema:"required"`
	Column string `json:"column" jsonschema:"required"`
	Index  int    `json:"index"`
}

func registerTaskTools(srv *mcp.Server, deps ToolDependencies) error {
	srv.Tool("task.create").
		Description("Create a task. Blank fields use the board defaults (medium, professional, backlog)").
		Handler(func(ctx context.Context, input taskCreateInput) (*mutation[task.Task], error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			result, err := app.CreateTaskHandler.Handle(ctx, commands.CreateTaskCommand{
				Title:       input.Title,
				Description: input.Description,
				Priority:    input.Priority,
				Category:    input.Category,
				Initiative:  input.Initiative,
				Estimate:    input.Estimate,
				Column:      input.Column,
				DueDate:     input.DueDate,
				Tags:        input.Tags,
			})
			if err != nil {
				return nil, err
			}
			return commit(ctx, app, result.Task)
		})

	srv.Tool("task.list").
		Description("List tasks in board order, optionally filtered").
		Handler(func(ctx context.Context, input taskListInput) ([]queries.TaskDTO, error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			return app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{
				TaskFilter: queries.TaskFilter{
					Search:     input.Search,
					Priority:   input.Priority,
					Category:   input.Category,
					Initiative: input.Initiative,
				},
				Column: input.Column,
				Limit:  input.Limit,
			})
		})

	srv.Tool("task.show").
		Description("Show one task by id or unique id prefix").
		Handler(func(ctx context.Context, input taskIDInput) (*queries.TaskDTO, error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			ref, err := resolveTask(app, input.TaskID)
			if err != nil {
				return nil, err
			}
			id, err := uuid.Parse(ref)
			if err != nil {
				return nil, fmt.Errorf("invalid task id: %w", err)
			}
			return app.GetTaskHandler.Handle(ctx, queries.GetTaskQuery{TaskID: id})
		})

	srv.Tool("task.update").
		Description("Change task fields. Omitted fields are kept; an empty due_date or tags clears it").
		Handler(func(ctx context.Context, input taskUpdateInput) (*mutation[task.Task], error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			id, err := resolveTask(app, input.TaskID)
			if err != nil {
				return nil, err
			}
			updated, err := app.UpdateTaskHandler.Handle(ctx, commands.UpdateTaskCommand{
				TaskID:      id,
				Title:       input.Title,
				Description: input.Description,
				Priority:    input.Priority,
				Category:    input.Category,
				Initiative:  input.Initiative,
				Estimate:    input.Estimate,
				Column:      input.Column,
				DueDate:     input.DueDate,
				Tags:        input.Tags,
			})
			if err != nil {
				return nil, err
			}
			return commit(ctx, app, updated)
		})

	srv.Tool("task.move").
		Description("Move a task to another column, keeping its position").
		Handler(func(ctx context.Context, input taskMoveInput) (*mutation[string], error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			id, err := resolveTask(app, input.TaskID)
			if err != nil {
				return nil, err
			}
			if err := app.TaskBoardHandler.Move(ctx, commands.MoveTaskCommand{TaskID: id, Column: input.Column}); err != nil {
				return nil, err
			}
			return commit(ctx, app, id)
		})

	srv.Tool("task.reorder").
		Description("Drop a task at index among the tasks of a column").
		Handler(func(ctx context.Context, input taskReorderInput) (*mutation[string], error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			id, err := resolveTask(app, input.TaskID)
			if err != nil {
				return nil, err
			}
			err = app.TaskBoardHandler.Reorder(ctx, commands.ReorderTaskCommand{
				TaskID: id,
				Column: input.Column,
				Index:  input.Index,
			})
			if err != nil {
				return nil, err
			}
			return commit(ctx, app, id)
		})

	srv.Tool("task.delete").
		Description("Delete a task").
		Handler(func(ctx context.Context, input taskIDInput) (*mutation[string], error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			id, err := resolveTask(app, input.TaskID)
			if err != nil {
				return nil, err
			}
			if err := app.TaskBoardHandler.Delete(ctx, commands.DeleteTaskCommand{TaskID: id}); err != nil {
				return nil, err
			}
			return commit(ctx, app, id)
		})

	return nil
}
