package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/grim/internal/productivity/application/queries"
)

// RegisterResources registers MCP resources that expose the signed-in
// user's board.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	registerTaskResources(srv, deps)
	registerPlanResources(srv, deps)
	registerSystemResources(srv, deps)
	return nil
}

type resourceFunc func(ctx context.Context) (any, error)

// jsonResource registers a read-only JSON resource that needs a session.
func jsonResource(srv *mcp.Server, deps ToolDependencies, uri, name, description string, load resourceFunc) {
	srv.Resource(uri).
		Name(name).
		Description(description).
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if _, err := sessionApp(deps.App); err != nil {
				return nil, err
			}
			v, err := load(ctx)
			if err != nil {
				return nil, err
			}
			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return nil, err
			}
			return &mcp.ResourceContent{
				URI:      uri,
				MimeType: "application/json",
				Text:     string(data),
			}, nil
		})
}

func registerTaskResources(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App

	jsonResource(srv, deps, "grim://tasks", "Tasks",
		"All tasks in board order",
		func(ctx context.Context) (any, error) {
			return app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{})
		})

	jsonResource(srv, deps, "grim://tasks/active", "Active Tasks",
		"Tasks in the sprint or in progress",
		func(ctx context.Context) (any, error) {
			sprint, err := app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{Column: "sprint"})
			if err != nil {
				return nil, err
			}
			doing, err := app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{Column: "in-progress"})
			if err != nil {
				return nil, err
			}
			return append(doing, sprint...), nil
		})

	jsonResource(srv, deps, "grim://tasks/critical", "Critical Tasks",
		"Tasks with critical priority",
		func(ctx context.Context) (any, error) {
			return app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{
				TaskFilter: queries.TaskFilter{Priority: "critical"},
			})
		})

	jsonResource(srv, deps, "grim://board", "Board",
		"Every kanban column with its tasks",
		func(ctx context.Context) (any, error) {
			return app.BoardQueryHandler.Handle(ctx, queries.BoardQuery{})
		})

	jsonResource(srv, deps, "grim://goals", "Goal Grid",
		"Goals by horizon and category with average progress",
		func(ctx context.Context) (any, error) {
			return app.GoalGridHandler.Handle(ctx)
		})

	jsonResource(srv, deps, "grim://initiatives", "Initiatives",
		"Task counts and completion per initiative",
		func(ctx context.Context) (any, error) {
			return app.InitiativesHandler.Handle(ctx)
		})
}

func registerPlanResources(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App

	jsonResource(srv, deps, "grim://plan/today", "Today's Plan",
		"Today's blocks with assigned tasks, workouts and meal notes",
		func(ctx context.Context) (any, error) {
			return app.DayPlanHandler.Handle(ctx, queries.DayPlanQuery{})
		})

	jsonResource(srv, deps, "grim://plan/week", "Week Plan",
		"The plan of every weekday",
		func(ctx context.Context) (any, error) {
			return app.DayPlanHandler.Week(ctx)
		})
}

func registerSystemResources(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App

	jsonResource(srv, deps, "grim://dashboard", "Dashboard",
		"Headline numbers and the focus list",
		func(ctx context.Context) (any, error) {
			return app.DashboardHandler.Handle(ctx, queries.DashboardQuery{})
		})

	jsonResource(srv, deps, "grim://user/session", "Session",
		"The signed-in user",
		func(ctx context.Context) (any, error) {
			return currentSession(app), nil
		})
}
