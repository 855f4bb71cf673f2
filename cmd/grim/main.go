package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/grim/adapter/cli"
	cliAuth "github.com/felixgeelhaar/grim/adapter/cli/auth"
	"github.com/felixgeelhaar/grim/adapter/cli/goal"
	"github.com/felixgeelhaar/grim/adapter/cli/mcp"
	"github.com/felixgeelhaar/grim/adapter/cli/plan"
	"github.com/felixgeelhaar/grim/adapter/cli/task"
	"github.com/felixgeelhaar/grim/internal/app"
	"github.com/felixgeelhaar/grim/pkg/config"
	"github.com/felixgeelhaar/grim/pkg/observability"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := observability.LoggerFromEnv()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}

	logCfg := observability.ConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat)
	// Stdout belongs to command output.
	logCfg.Output = os.Stderr
	logger = observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	defaultUser, err := uuid.Parse(cfg.UserID)
	if err != nil {
		logger.Error("invalid GRIM_USER_ID", "error", err)
		return 1
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		return 1
	}
	defer func() {
		if err := container.Close(context.Background()); err != nil {
			logger.Warn("shutdown incomplete", "error", err)
		}
	}()

	go func() {
		if err := container.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("commit processor stopped", "error", err)
		}
	}()

	if _, err := container.Restore(ctx); err != nil {
		logger.Warn("stored session could not be restored", "error", err)
	}

	cli.SetApp(cli.NewApp(container, defaultUser))

	cli.AddCommand(task.Cmd)
	cli.AddCommand(goal.Cmd)
	cli.AddCommand(plan.Cmd)
	cli.AddCommand(cliAuth.Cmd)
	cli.AddCommand(mcp.Cmd)

	if err := cli.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
