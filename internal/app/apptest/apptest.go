// Package apptest builds containers backed by a throwaway SQLite file for
// tests of the host surfaces.
package apptest

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/grim/internal/app"
	identity "github.com/felixgeelhaar/grim/internal/identity/domain"
	"github.com/felixgeelhaar/grim/pkg/config"
)

// UserID is the identity SignedIn signs in as.
var UserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Config returns a fast-polling configuration on a fresh SQLite file.
func Config(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:                  "development",
		UserID:                  UserID.String(),
		Profile:                 "default",
		DatabaseDriver:          "sqlite",
		SQLitePath:              filepath.Join(t.TempDir(), "grim.db"),
		SessionStore:            config.SessionStoreMemory,
		CommitPollInterval:      10 * time.Millisecond,
		CommitBatchSize:         50,
		CommitMaxRetries:        3,
		CommitBackoffBase:       10 * time.Millisecond,
		CommitBackoffMax:        50 * time.Millisecond,
		CommitDrainTimeout:      5 * time.Second,
		BootstrapTimeout:        5 * time.Second,
		FailureBuffer:           16,
		BreakerFailureThreshold: 5,
		BreakerTimeout:          time.Second,
	}
}

// Container builds a container with logs discarded. It is closed when the
// test ends.
func Container(t *testing.T) *app.Container {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := app.NewContainer(ctx, Config(t), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

// SignedIn is Container with UserID signed in and the empty board loaded.
func SignedIn(t *testing.T) *app.Container {
	t.Helper()
	c := Container(t)
	ctx := context.Background()

	email, err := identity.NewEmail("test@example.com")
	require.NoError(t, err)
	_, err = c.Sessions.SignIn(ctx, UserID, email, nil)
	require.NoError(t, err)
	require.NoError(t, c.Engine.WaitForLoad(ctx))
	return c
}
