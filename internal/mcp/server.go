// Package mcp hosts the board's MCP server over streamable HTTP.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	mcpgo "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/middleware"

	"github.com/felixgeelhaar/grim/adapter/cli"
	mcplocal "github.com/felixgeelhaar/grim/adapter/mcp"
	identityOAuth "github.com/felixgeelhaar/grim/internal/identity/application/oauth"
	"github.com/felixgeelhaar/grim/pkg/config"
)

// ServerName is what MCP clients see during initialize.
const ServerName = "grim-mcp"

// NewServer builds the MCP server with every tool, resource and prompt
// registered against cliApp.
func NewServer(cliApp *cli.App, authService *identityOAuth.Service) (*mcpgo.Server, error) {
	if cliApp == nil {
		return nil, errors.New("CLI app is required")
	}

	srv := mcpgo.NewServer(mcpgo.ServerInfo{
		Name:    ServerName,
		Version: cli.Version,
		Capabilities: mcpgo.Capabilities{
			Tools:     true,
			Resources: true,
			Prompts:   true,
		},
	})

	deps := mcplocal.ToolDependencies{App: cliApp, AuthService: authService}
	for name, register := range map[string]func(*mcpgo.Server, mcplocal.ToolDependencies) error{
		"tools":     mcplocal.RegisterCLITools,
		"resources": mcplocal.RegisterResources,
		"prompts":   mcplocal.RegisterPrompts,
	} {
		if err := register(srv, deps); err != nil {
			return nil, fmt.Errorf("register %s: %w", name, err)
		}
	}
	return srv, nil
}

// Serve listens on cfg.MCPAddr until ctx is canceled.
func Serve(ctx context.Context, cfg *config.Config, cliApp *cli.App, authService *identityOAuth.Service, logger *slog.Logger) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "mcp")

	srv, err := NewServer(cliApp, authService)
	if err != nil {
		return err
	}

	stack, authenticated := middlewareStack(cfg.MCPAuthToken, logger)
	if !authenticated {
		logger.Warn("MCP_AUTH_TOKEN not set; requests are unauthenticated")
	}
	logger.Info("mcp server listening", "addr", cfg.MCPAddr, "version", cli.Version)
	return mcpgo.ServeHTTPWithMiddleware(ctx, srv, cfg.MCPAddr, nil, mcpgo.WithMiddleware(stack...))
}

// middlewareStack is the default logging and recovery stack, behind bearer
// auth when token is set.
func middlewareStack(token string, logger *slog.Logger) ([]middleware.Middleware, bool) {
	log := mcpLogger{logger: logger}
	stack := middleware.DefaultStack(log)
	if token == "" {
		return stack, false
	}

	authenticator := middleware.BearerTokenAuthenticator(middleware.StaticTokens(map[string]*middleware.Identity{
		token: {ID: "mcp", Name: "mcp"},
	}))
	auth := middleware.Auth(authenticator, middleware.WithAuthLogger(log))
	return append([]middleware.Middleware{auth}, stack...), true
}

// mcpLogger feeds mcp-go's middleware log calls into slog.
type mcpLogger struct {
	logger *slog.Logger
}

func (l mcpLogger) Debug(msg string, fields ...middleware.Field) {
	l.logger.Debug(msg, fieldsToArgs(fields)...)
}

func (l mcpLogger) Info(msg string, fields ...middleware.Field) {
	l.logger.Info(msg, fieldsToArgs(fields)...)
}

func (l mcpLogger) Warn(msg string, fields ...middleware.Field) {
	l.logger.Warn(msg, fieldsToArgs(fields)...)
}

func (l mcpLogger) Error(msg string, fields ...middleware.Field) {
	l.logger.Error(msg, fieldsToArgs(fields)...)
}

func fieldsToArgs(fields []middleware.Field) []any {
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return args
}
