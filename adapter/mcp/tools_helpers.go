package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/grim/adapter/cli"
)

// mutation is returned by every tool that changes the board. The change
// is already visible locally; CommitFailures lists remote writes that
// were rejected while the queue drained.
type mutation[T any] struct {
	Result         T        `json:"result"`
	CommitFailures []string `json:"commit_failures,omitempty"`
}

// sessionApp fails unless the app is wired and a user is signed in.
func sessionApp(app *cli.App) (*cli.App, error) {
	if app == nil {
		return nil, cli.ErrNotInitialized
	}
	if err := app.RequireSession(); err != nil {
		return nil, err
	}
	return app, nil
}

// commit drains the commit queue and wraps result with any failures.
func commit[T any](ctx context.Context, app *cli.App, result T) (*mutation[T], error) {
	failures, err := app.Flush(ctx)
	if err != nil {
		return nil, err
	}
	m := &mutation[T]{Result: result}
	for _, f := range failures {
		m.CommitFailures = append(m.CommitFailures, f.String())
	}
	return m, nil
}

func resolveTask(app *cli.App, ref string) (string, error) {
	if ref == "" {
		return "", errors.New("task_id is required")
	}
	return app.ResolveTaskID(ref)
}

func resolveGoal(app *cli.App, ref string) (string, error) {
	if ref == "" {
		return "", errors.New("goal_id is required")
	}
	return app.ResolveGoalID(ref)
}
