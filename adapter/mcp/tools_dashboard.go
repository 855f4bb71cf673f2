package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/grim/internal/productivity/application/queries"
)

// DashboardSummary is the dashboard plus short suggestions derived from it.
type DashboardSummary struct {
	Timestamp       string                `json:"timestamp"`
	Dashboard       *queries.DashboardDTO `json:"dashboard"`
	Recommendations []string              `json:"recommendations"`
}

type boardInput struct {
	Search     string `json:"search,omitempty"`
	Priority   string `json:"priority,omitempty"`
	Category   string `json:"category,omitempty"`
	Initiative string `json:"initiative,omitempty"`
}

type focusInput struct {
	Limit int `json:"limit,omitempty"`
}

func registerBoardTools(srv *mcp.Server, deps ToolDependencies) error {
	srv.Tool("board.show").
		Description("Show every kanban column in order with its tasks. Filters hide tasks, never columns").
		Handler(func(ctx context.Context, input boardInput) ([]queries.ColumnDTO, error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			return app.BoardQueryHandler.Handle(ctx, queries.BoardQuery{TaskFilter: queries.TaskFilter{
				Search:     input.Search,
				Priority:   input.Priority,
				Category:   input.Category,
				Initiative: input.Initiative,
			}})
		})

	srv.Tool("board.dashboard").
		Description("Get the headline numbers of the board with recommendations").
		Handler(func(ctx context.Context, input struct{}) (*DashboardSummary, error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			d, err := app.DashboardHandler.Handle(ctx, queries.DashboardQuery{})
			if err != nil {
				return nil, err
			}
			return &DashboardSummary{
				Timestamp:       time.Now().Format(time.RFC3339),
				Dashboard:       d,
				Recommendations: recommend(d),
			}, nil
		})

	srv.Tool("board.focus").
		Description("Rank open tasks by priority, due date, estimate and stage").
		Handler(func(ctx context.Context, input focusInput) ([]queries.FocusDTO, error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			d, err := app.DashboardHandler.Handle(ctx, queries.DashboardQuery{FocusLimit: input.Limit})
			if err != nil {
				return nil, err
			}
			return d.Focus, nil
		})

	srv.Tool("board.initiatives").
		Description("Show task counts and completion per initiative").
		Handler(func(ctx context.Context, input struct{}) ([]queries.InitiativeDTO, error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			return app.InitiativesHandler.Handle(ctx)
		})

	return nil
}

func recommend(d *queries.DashboardDTO) []string {
	var out []string
	if d.InProgress > 3 {
		out = append(out, fmt.Sprintf("%d tasks are in progress. Finish some before starting more.", d.InProgress))
	}
	if d.Critical > 0 {
		out = append(out, fmt.Sprintf("%d critical tasks are open. Consider moving them into the sprint.", d.Critical))
	}
	if d.DeepWorkBlocks == 0 {
		out = append(out, "No deep work blocks today. Assign focus tasks to tomorrow's blocks.")
	}
	if d.AvgGoalProgress < 25 {
		out = append(out, "Goal progress is low. Review the goal grid and pick one goal to push.")
	}
	if len(out) == 0 {
		out = append(out, "Looking good! Keep the sprint column small.")
	}
	return out
}
