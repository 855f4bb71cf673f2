package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/grim/adapter/cli"
	"github.com/felixgeelhaar/grim/internal/identity/application/oauth"
	identity "github.com/felixgeelhaar/grim/internal/identity/domain"
)

type authExchangeInput struct {
	Code string `json:"code" jsonschema:"required"`
}

type authLocalInput struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
}

type sessionInfo struct {
	SignedIn bool      `json:"signed_in"`
	UserID   uuid.UUID `json:"user_id,omitempty"`
	Email    string    `json:"email,omitempty"`
	Tasks    int       `json:"tasks"`
	Goals    int       `json:"goals"`
}

func registerAuthTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App
	service := deps.AuthService

	srv.Tool("auth.url").
		Description("Generate OAuth2 authorization URL").
		Handler(func(ctx context.Context, input struct{}) (map[string]any, error) {
			if service == nil {
				return nil, errors.New("auth service not configured")
			}
			state := uuid.New().String()
			return map[string]any{
				"url":   service.AuthURL(state),
				"state": state,
			}, nil
		})

	srv.Tool("auth.exchange").
		Description("Exchange an OAuth2 code, sign in and load the board").
		Handler(func(ctx context.Context, input authExchangeInput) (*sessionInfo, error) {
			if service == nil {
				return nil, errors.New("auth service not configured")
			}
			if input.Code == "" {
				return nil, errors.New("code is required")
			}
			token, err := service.Exchange(ctx, input.Code)
			if err != nil {
				return nil, err
			}
			userID, raw, err := oauth.Identity(token)
			if err != nil {
				return nil, err
			}
			email, err := parseEmail(raw)
			if err != nil {
				return nil, err
			}
			if _, err := app.Sessions.SignIn(ctx, userID, email, token); err != nil {
				return nil, err
			}
			return loaded(ctx, app)
		})

	srv.Tool("auth.local").
		Description("Sign in without OAuth and load the board").
		Handler(func(ctx context.Context, input authLocalInput) (*sessionInfo, error) {
			userID := app.DefaultUserID
			if input.UserID != "" {
				id, err := uuid.Parse(input.UserID)
				if err != nil {
					return nil, fmt.Errorf("invalid user_id: %w", err)
				}
				userID = id
			}
			email, err := parseEmail(input.Email)
			if err != nil {
				return nil, err
			}
			if _, err := app.Sessions.SignIn(ctx, userID, email, nil); err != nil {
				return nil, err
			}
			return loaded(ctx, app)
		})

	srv.Tool("auth.status").
		Description("Show who is signed in and how much of the board is loaded").
		Handler(func(ctx context.Context, input struct{}) (*sessionInfo, error) {
			return currentSession(app), nil
		})

	srv.Tool("auth.logout").
		Description("Commit pending changes, sign out and clear the local board").
		Handler(func(ctx context.Context, input struct{}) (*mutation[bool], error) {
			failures, err := commit(ctx, app, true)
			if err != nil {
				return nil, err
			}
			if err := app.Sessions.SignOut(ctx); err != nil {
				return nil, err
			}
			return failures, nil
		})

	return nil
}

func loaded(ctx context.Context, app *cli.App) (*sessionInfo, error) {
	if err := app.Engine.WaitForLoad(ctx); err != nil {
		return nil, fmt.Errorf("signed in, but the board did not load: %w", err)
	}
	return currentSession(app), nil
}

func currentSession(app *cli.App) *sessionInfo {
	s := app.Sessions.CurrentSession()
	if s == nil {
		return &sessionInfo{}
	}
	st := app.Engine.Store()
	return &sessionInfo{
		SignedIn: true,
		UserID:   s.UserID,
		Email:    s.Email.String(),
		Tasks:    len(st.Tasks()),
		Goals:    len(st.Goals()),
	}
}

func parseEmail(raw string) (identity.Email, error) {
	if raw == "" {
		return identity.Email{}, nil
	}
	return identity.NewEmail(raw)
}
