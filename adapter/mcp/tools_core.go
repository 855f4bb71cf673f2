package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/grim/internal/productivity/application/commands"
	"github.com/felixgeelhaar/grim/pkg/observability"
)

type seedInput struct {
	Force bool `json:"force,omitempty"`
}

type healthResult struct {
	SignedIn bool                        `json:"signed_in"`
	Store    string                      `json:"store"`
	Version  uint64                      `json:"version"`
	LoadErr  string                      `json:"load_error,omitempty"`
	Health   observability.OverallHealth `json:"health"`
}

func registerCoreTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("cli.health").
		Description("Check session, store and dependency health").
		Handler(func(ctx context.Context, input struct{}) (*healthResult, error) {
			if app == nil || app.Engine == nil || app.Health == nil {
				return nil, errors.New("app not initialized")
			}
			st := app.Engine.Store()
			status, loadErr := st.Status()
			result := &healthResult{
				SignedIn: app.Engine.Session() != nil,
				Store:    status.String(),
				Version:  st.Version(),
				Health:   app.Health.Check(ctx),
			}
			if loadErr != nil {
				result.LoadErr = loadErr.Error()
			}
			return result, nil
		})

	srv.Tool("board.seed").
		Description("Fill an empty board with sample tasks and goals").
		Handler(func(ctx context.Context, input seedInput) (*mutation[*commands.SeedResult], error) {
			app, err := sessionApp(deps.App)
			if err != nil {
				return nil, err
			}
			result, err := app.SeedHandler.Handle(ctx, commands.SeedCommand{Force: input.Force})
			if err != nil {
				return nil, err
			}
			return commit(ctx, app, result)
		})

	return nil
}
