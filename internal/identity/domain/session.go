// Package domain describes who is signed in. The rest of the system only
// sees a Session through the Provider interface.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

var (
	ErrNoSession     = errors.New("no active session")
	ErrInvalidUserID = errors.New("user id is required")
)

// Session is an authenticated identity. Token may be nil for local stores
// that need no credentials.
type Session struct {
	UserID    uuid.UUID     `json:"user_id"`
	Email     Email         `json:"email"`
	Token     *oauth2.Token `json:"token,omitempty"`
	StartedAt time.Time     `json:"started_at"`
}

// NewSession creates a session for userID.
func NewSession(userID uuid.UUID, email Email, token *oauth2.Token, now time.Time) (*Session, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}
	return &Session{
		UserID:    userID,
		Email:     email,
		Token:     token,
		StartedAt: now.UTC(),
	}, nil
}

// Clone returns a copy that shares nothing with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.Token != nil {
		tok := *s.Token
		out.Token = &tok
	}
	return &out
}

// Expired reports whether the access token is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.Token == nil || s.Token.Expiry.IsZero() {
		return false
	}
	return !now.Before(s.Token.Expiry)
}

// SameIdentity reports whether a and b belong to the same user. Two nil
// sessions are the same; a token refresh keeps the identity.
func SameIdentity(a, b *Session) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.UserID == b.UserID
}

// Provider supplies the current identity and announces changes: sign-in,
// sign-out and token refresh.
type Provider interface {
	CurrentSession() *Session
	// OnSessionChange registers fn and returns a function that removes it.
	OnSessionChange(fn func(*Session)) (unsubscribe func())
}

// SessionStore keeps the session between process runs.
type SessionStore interface {
	// Load returns ErrNoSession when nothing is stored.
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context) error
}
