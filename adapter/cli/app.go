package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	internalApp "github.com/felixgeelhaar/grim/internal/app"
	"github.com/felixgeelhaar/grim/internal/identity/application/oauth"
	"github.com/felixgeelhaar/grim/internal/identity/application/session"
	"github.com/felixgeelhaar/grim/internal/productivity/application/commands"
	"github.com/felixgeelhaar/grim/internal/productivity/application/optimistic"
	"github.com/felixgeelhaar/grim/internal/productivity/application/queries"
	"github.com/felixgeelhaar/grim/pkg/observability"
)

var (
	// ErrNotInitialized is returned by commands that need the container.
	ErrNotInitialized = errors.New("application not initialized - database connection required")
	// ErrNotSignedIn is returned by board commands while nobody is signed in.
	ErrNotSignedIn = errors.New("not signed in - run 'grim auth login' first")
)

// App holds the CLI application dependencies.
type App struct {
	// Task Command Handlers
	CreateTaskHandler *commands.CreateTaskHandler
	UpdateTaskHandler *commands.UpdateTaskHandler
	TaskBoardHandler  *commands.BoardHandler

	// Goal and Plan Command Handlers
	GoalHandler *commands.GoalHandler
	PlanHandler *commands.PlanHandler
	SeedHandler *commands.SeedHandler

	// Query Handlers
	ListTasksHandler   *queries.ListTasksHandler
	GetTaskHandler     *queries.GetTaskHandler
	BoardQueryHandler  *queries.BoardHandler
	GoalGridHandler    *queries.GoalGridHandler
	DashboardHandler   *queries.DashboardHandler
	InitiativesHandler *queries.InitiativesHandler
	DayPlanHandler     *queries.DayPlanHandler

	// Identity
	Sessions    *session.Manager
	AuthService *oauth.Service

	Engine  *optimistic.Engine
	Health  *observability.HealthRegistry
	Metrics observability.Metrics

	// DefaultUserID is used by local sign-in when no id is given.
	DefaultUserID uuid.UUID

	drain func(ctx context.Context) error
}

// NewApp creates a CLI application backed by the container's handlers.
func NewApp(c *internalApp.Container, defaultUser uuid.UUID) *App {
	return &App{
		CreateTaskHandler:  c.CreateTaskHandler,
		UpdateTaskHandler:  c.UpdateTaskHandler,
		TaskBoardHandler:   c.TaskBoardHandler,
		GoalHandler:        c.GoalHandler,
		PlanHandler:        c.PlanHandler,
		SeedHandler:        c.SeedHandler,
		ListTasksHandler:   c.ListTasksHandler,
		GetTaskHandler:     c.GetTaskHandler,
		BoardQueryHandler:  c.BoardQueryHandler,
		GoalGridHandler:    c.GoalGridHandler,
		DashboardHandler:   c.DashboardHandler,
		InitiativesHandler: c.InitiativesHandler,
		DayPlanHandler:     c.DayPlanHandler,
		Sessions:           c.Sessions,
		AuthService:        c.AuthService,
		Engine:             c.Engine,
		Health:             c.Health,
		Metrics:            c.Metrics,
		DefaultUserID:      defaultUser,
		drain:              c.Drain,
	}
}

// RequireSession fails with ErrNotSignedIn unless a board is loaded.
func (a *App) RequireSession() error {
	if a.Engine == nil || a.Engine.Session() == nil {
		return ErrNotSignedIn
	}
	return nil
}

// Flush waits for queued commits and returns the ones the remote store
// rejected. Local state keeps those changes either way.
func (a *App) Flush(ctx context.Context) ([]optimistic.Failure, error) {
	if a.drain != nil {
		timer := observability.StartTimer("commit.flush").WithMetrics(a.Metrics)
		err := a.drain(ctx)
		timer.Stop(ctx, err)
		if err != nil {
			return nil, err
		}
	}
	if a.Engine == nil {
		return nil, nil
	}

	var failures []optimistic.Failure
	for {
		select {
		case f := <-a.Engine.Failures():
			failures = append(failures, f)
		default:
			return failures, nil
		}
	}
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// SessionApp returns the application when a user is signed in.
func SessionApp() (*App, error) {
	a := GetApp()
	if a == nil {
		return nil, ErrNotInitialized
	}
	if err := a.RequireSession(); err != nil {
		return nil, err
	}
	return a, nil
}

// ErrAmbiguousID is returned when a short id matches more than one entity.
var ErrAmbiguousID = errors.New("id prefix matches more than one entry")

// ResolveTaskID expands a full id or a unique prefix of one to the task's
// full id. Unknown references are returned unchanged so the command
// reports them.
func (a *App) ResolveTaskID(ref string) (string, error) {
	ids := make([]uuid.UUID, 0)
	for _, t := range a.Engine.Store().Tasks() {
		ids = append(ids, t.ID)
	}
	return resolvePrefix(ref, ids)
}

// ResolveGoalID is ResolveTaskID for goals.
func (a *App) ResolveGoalID(ref string) (string, error) {
	ids := make([]uuid.UUID, 0)
	for _, g := range a.Engine.Store().Goals() {
		ids = append(ids, g.ID)
	}
	return resolvePrefix(ref, ids)
}

func resolvePrefix(ref string, ids []uuid.UUID) (string, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if _, err := uuid.Parse(ref); err == nil || ref == "" {
		return ref, nil
	}
	match := ""
	for _, id := range ids {
		if strings.HasPrefix(id.String(), ref) {
			if match != "" {
				return "", fmt.Errorf("%w: %s", ErrAmbiguousID, ref)
			}
			match = id.String()
		}
	}
	if match == "" {
		return ref, nil
	}
	return match, nil
}
