package mcp

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/grim/adapter/cli"
	"github.com/felixgeelhaar/grim/internal/app"
)

// NewCLIApp creates a CLI application backed by the container and
// restores the stored session, if any, so tools work on a loaded board.
// The app is usable even when restoring fails; the caller decides whether
// starting signed out is acceptable.
func NewCLIApp(ctx context.Context, container *app.Container, defaultUser uuid.UUID) (*cli.App, error) {
	a := cli.NewApp(container, defaultUser)
	if _, err := container.Restore(ctx); err != nil {
		return a, fmt.Errorf("restore session: %w", err)
	}
	return a, nil
}
