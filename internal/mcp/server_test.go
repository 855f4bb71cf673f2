package mcp

import (
	"context"
	"log/slog"
	"testing"

	"github.com/felixgeelhaar/mcp-go/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/grim/internal/app/apptest"
)

func TestNewServer_RequiresApp(t *testing.T) {
	_, err := NewServer(nil, nil)
	assert.Error(t, err)
}

func TestNewCLIApp_RestoresSession(t *testing.T) {
	container := apptest.SignedIn(t)

	app, err := NewCLIApp(context.Background(), container, apptest.UserID)
	require.NoError(t, err)
	require.NoError(t, app.RequireSession())

	srv, err := NewServer(app, nil)
	require.NoError(t, err)
	assert.NotNil(t, srv)
}

func TestNewCLIApp_SignedOut(t *testing.T) {
	app, err := NewCLIApp(context.Background(), apptest.Container(t), apptest.UserID)
	require.NoError(t, err)
	assert.Error(t, app.RequireSession())
}

func TestServe_RequiresConfig(t *testing.T) {
	assert.Error(t, Serve(context.Background(), nil, nil, nil, nil))
}

func TestMiddlewareStack(t *testing.T) {
	open, authenticated := middlewareStack("", slog.Default())
	assert.False(t, authenticated)

	guarded, authenticated := middlewareStack("s3cret", slog.Default())
	assert.True(t, authenticated)
	assert.Len(t, guarded, len(open)+1, "auth runs in front of the default stack")
}

func TestFieldsToArgs(t *testing.T) {
	args := fieldsToArgs([]middleware.Field{{Key: "tool", Value: "task.create"}, {Key: "ms", Value: 12}})
	assert.Equal(t, []any{"tool", "task.create", "ms", 12}, args)
}
