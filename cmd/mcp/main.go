package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/grim/internal/app"
	mcpinternal "github.com/felixgeelhaar/grim/internal/mcp"
	"github.com/felixgeelhaar/grim/pkg/config"
	"github.com/felixgeelhaar/grim/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = observability.NewLogger(observability.ConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat))

	userID, err := uuid.Parse(cfg.UserID)
	if err != nil {
		logger.Error("invalid GRIM_USER_ID", "error", err)
		os.Exit(1)
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := container.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("commit processor stopped", "error", err)
		}
	}()

	cliApp, err := mcpinternal.NewCLIApp(ctx, container, userID)
	if err != nil {
		logger.Warn("starting signed out", "error", err)
	}

	err = mcpinternal.Serve(ctx, cfg, cliApp, container.AuthService, logger)
	if cerr := container.Close(context.Background()); cerr != nil {
		logger.Warn("shutdown incomplete", "error", cerr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
