// Package session owns the signed-in identity of the running process and
// notifies subscribers when it changes.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/grim/internal/identity/domain"
)

// Manager implements domain.Provider. A nil store keeps the session in
// memory only.
type Manager struct {
	// notifyMu orders changes together with their notifications, so
	// subscribers see sessions in the order they became current.
	notifyMu sync.Mutex

	mu      sync.Mutex
	current *domain.Session
	subs    map[int]func(*domain.Session)
	nextSub int

	store  domain.SessionStore
	logger *slog.Logger
	now    func() time.Time
}

// NewManager creates a signed-out manager.
func NewManager(store domain.SessionStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		subs:   make(map[int]func(*domain.Session)),
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

var _ domain.Provider = (*Manager)(nil)

// CurrentSession returns a copy of the active session or nil.
func (m *Manager) CurrentSession() *domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Clone()
}

// OnSessionChange registers fn. Subscribers run in registration order on
// the goroutine that changed the session, and must not change it themselves.
func (m *Manager) OnSessionChange(fn func(*domain.Session)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Restore loads a stored session, if any, and announces it.
func (m *Manager) Restore(ctx context.Context) (*domain.Session, error) {
	if m.store == nil {
		return nil, nil
	}
	s, err := m.store.Load(ctx)
	if errors.Is(err, domain.ErrNoSession) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	m.set(s)
	m.logger.Info("session restored", "user_id", s.UserID)
	return s.Clone(), nil
}

// SignIn starts a session for userID, replacing any current one.
func (m *Manager) SignIn(ctx context.Context, userID uuid.UUID, email domain.Email, token *oauth2.Token) (*domain.Session, error) {
	s, err := domain.NewSession(userID, email, token, m.now())
	if err != nil {
		return nil, err
	}
	if m.store != nil {
		if err := m.store.Save(ctx, s); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}
	m.set(s)
	m.logger.Info("signed in", "user_id", userID)
	return s.Clone(), nil
}

// SignOut ends the session. Subscribers see nil even when the stored copy
// cannot be removed; that error is returned afterwards.
func (m *Manager) SignOut(ctx context.Context) error {
	m.set(nil)
	m.logger.Info("signed out")
	if m.store != nil {
		if err := m.store.Delete(ctx); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	return nil
}

// Refresh pulls a token from ts. When it differs from the current token the
// session is updated and subscribers are notified with the same identity.
func (m *Manager) Refresh(ctx context.Context, ts oauth2.TokenSource) error {
	current := m.CurrentSession()
	if current == nil {
		return domain.ErrNoSession
	}

	token, err := ts.Token()
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}
	if current.Token != nil && current.Token.AccessToken == token.AccessToken {
		return nil
	}

	current.Token = token
	if m.store != nil {
		if err := m.store.Save(ctx, current); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}
	m.set(current)
	m.logger.Debug("session token refreshed", "user_id", current.UserID)
	return nil
}

func (m *Manager) set(s *domain.Session) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	m.current = s.Clone()
	ids := make([]int, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(*domain.Session), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.subs[id])
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(s.Clone())
	}
}
