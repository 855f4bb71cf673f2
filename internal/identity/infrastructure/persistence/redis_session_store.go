package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/grim/internal/identity/domain"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/crypto"
)

// DefaultSessionTTL bounds how long an idle stored session survives.
const DefaultSessionTTL = 30 * 24 * time.Hour

// RedisSessionStore keeps the session under grim:session:{profile}.
type RedisSessionStore struct {
	client  *redis.Client
	profile string
	ttl     time.Duration
	codec   sessionCodec
}

// NewRedisSessionStore creates a store for profile. A zero ttl stores
// without expiration.
func NewRedisSessionStore(client *redis.Client, profile string, ttl time.Duration) *RedisSessionStore {
	if profile == "" {
		profile = "default"
	}
	return &RedisSessionStore{client: client, profile: profile, ttl: ttl}
}

var _ domain.SessionStore = (*RedisSessionStore)(nil)

// WithEncrypter seals stored sessions with enc.
func (s *RedisSessionStore) WithEncrypter(enc crypto.Encrypter) *RedisSessionStore {
	s.codec.enc = enc
	return s
}

func (s *RedisSessionStore) key() string {
	return fmt.Sprintf("grim:session:%s", s.profile)
}

func (s *RedisSessionStore) Load(ctx context.Context) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return s.codec.decode(raw)
}

func (s *RedisSessionStore) Save(ctx context.Context, session *domain.Session) error {
	raw, err := s.codec.encode(session)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
