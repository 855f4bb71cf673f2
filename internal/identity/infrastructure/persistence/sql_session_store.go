package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/grim/internal/identity/domain"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/crypto"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/database"
)

// SQLSessionStore keeps the session in the sessions table of the local
// database, one row per profile.
type SQLSessionStore struct {
	conn    database.Connection
	profile string
	codec   sessionCodec
}

func NewSQLSessionStore(conn database.Connection, profile string) *SQLSessionStore {
	if profile == "" {
		profile = "default"
	}
	return &SQLSessionStore{conn: conn, profile: profile}
}

var _ domain.SessionStore = (*SQLSessionStore)(nil)

// WithEncrypter seals stored sessions with enc.
func (s *SQLSessionStore) WithEncrypter(enc crypto.Encrypter) *SQLSessionStore {
	s.codec.enc = enc
	return s
}

func (s *SQLSessionStore) Load(ctx context.Context) (*domain.Session, error) {
	query := s.conn.Driver().Rebind(`SELECT payload FROM sessions WHERE profile = ?`)

	var payload string
	err := database.ExecutorFromContext(ctx, s.conn).QueryRow(ctx, query, s.profile).Scan(&payload)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrNoSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return s.codec.decode([]byte(payload))
}

func (s *SQLSessionStore) Save(ctx context.Context, session *domain.Session) error {
	raw, err := s.codec.encode(session)
	if err != nil {
		return err
	}

	query := s.conn.Driver().Rebind(`
		INSERT INTO sessions (profile, user_id, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (profile) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at`)

	_, err = database.ExecutorFromContext(ctx, s.conn).Exec(ctx, query,
		s.profile,
		session.UserID.String(),
		string(raw),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SQLSessionStore) Delete(ctx context.Context) error {
	query := s.conn.Driver().Rebind(`DELETE FROM sessions WHERE profile = ?`)
	if _, err := database.ExecutorFromContext(ctx, s.conn).Exec(ctx, query, s.profile); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
