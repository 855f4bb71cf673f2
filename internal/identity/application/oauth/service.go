// Package oauth runs the authorization-code flow against the remote store's
// identity endpoint and hands out refreshing token sources.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

var ErrIncompleteConfig = errors.New("oauth configuration is incomplete")

// Config holds the client registration.
type Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string
	Scopes       []string
}

// IsConfigured reports whether the flow can run at all.
func (c Config) IsConfigured() bool {
	return c.ClientID != "" && c.AuthURL != "" && c.TokenURL != ""
}

// Service wraps an oauth2.Config.
type Service struct {
	oauthConfig *oauth2.Config
}

// NewService validates cfg and creates a Service.
func NewService(cfg Config) (*Service, error) {
	if !cfg.IsConfigured() || cfg.RedirectURL == "" {
		return nil, ErrIncompleteConfig
	}
	return &Service{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
			RedirectURL: cfg.RedirectURL,
			Scopes:      cfg.Scopes,
		},
	}, nil
}

// AuthURL returns the provider authorization URL.
func (s *Service) AuthURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token.
func (s *Service) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.New("authorization code is required")
	}
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return token, nil
}

// TokenSource returns a source that refreshes token when it expires.
func (s *Service) TokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource {
	return s.oauthConfig.TokenSource(ctx, token)
}

// ScopesFromEnv parses a comma-separated list of scopes.
func ScopesFromEnv(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	scopes := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			scopes = append(scopes, trimmed)
		}
	}
	return scopes
}

// ErrNoSubject is returned when a token response names no user.
var ErrNoSubject = errors.New("token response has no subject")

// Identity reads the user a token was issued to from the token response.
// A "user_id" field that is a UUID is used as is; otherwise "sub" is mapped
// to a stable name-based UUID. Email is empty when the response has none.
func Identity(token *oauth2.Token) (uuid.UUID, string, error) {
	if token == nil {
		return uuid.Nil, "", ErrNoSubject
	}
	email, _ := token.Extra("email").(string)

	if raw, ok := token.Extra("user_id").(string); ok {
		if id, err := uuid.Parse(raw); err == nil {
			return id, email, nil
		}
	}
	sub, _ := token.Extra("sub").(string)
	if sub == "" {
		return uuid.Nil, email, ErrNoSubject
	}
	if id, err := uuid.Parse(sub); err == nil {
		return id, email, nil
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("grim:"+sub)), email, nil
}
