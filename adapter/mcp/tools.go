package mcp

import (
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/grim/adapter/cli"
	identityOAuth "github.com/felixgeelhaar/grim/internal/identity/application/oauth"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App         *cli.App
	AuthService *identityOAuth.Service
}

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	registrars := []func(*mcp.Server, ToolDependencies) error{
		registerCoreTools,
		registerTaskTools,
		registerBoardTools,
		registerGoalTools,
		registerPlanTools,
		registerAuthTools,
	}
	for _, register := range registrars {
		if err := register(srv, deps); err != nil {
			return err
		}
	}
	return nil
}
