package app

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	identity "github.com/felixgeelhaar/grim/internal/identity/domain"
	identityPersistence "github.com/felixgeelhaar/grim/internal/identity/infrastructure/persistence"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/goal"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/internal/productivity/infrastructure/persistence"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/crypto"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/grim/pkg/config"
	"github.com/felixgeelhaar/grim/pkg/observability"
)

// RepositoryFactory builds the remote-store collaborators for one connection.
type RepositoryFactory struct {
	conn    database.Connection
	redis   *redis.Client
	cfg     *config.Config
	metrics observability.Metrics
	logger  *slog.Logger

	breaker *persistence.Breaker
}

// NewRepositoryFactory creates a new repository factory. redisClient may be
// nil unless the redis session store is selected.
func NewRepositoryFactory(conn database.Connection, redisClient *redis.Client, cfg *config.Config, metrics observability.Metrics, logger *slog.Logger) *RepositoryFactory {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &RepositoryFactory{conn: conn, redis: redisClient, cfg: cfg, metrics: metrics, logger: logger}
}

// Breaker returns the breaker shared by both gateways. Task and goal rows
// live in the same store, so one outage trips both.
func (f *RepositoryFactory) Breaker() *persistence.Breaker {
	if f.breaker == nil {
		bc := persistence.DefaultBreakerConfig()
		if f.cfg.BreakerFailureThreshold > 0 {
			bc.FailureThreshold = uint32(f.cfg.BreakerFailureThreshold)
		}
		if f.cfg.BreakerTimeout > 0 {
			bc.Timeout = f.cfg.BreakerTimeout
		}
		f.breaker = persistence.NewBreaker("remote-store", bc, f.metrics, f.logger)
	}
	return f.breaker
}

// TaskGateway returns the task rows of the remote store behind the breaker.
func (f *RepositoryFactory) TaskGateway() task.Gateway {
	return persistence.NewBreakerTaskGateway(persistence.NewSQLTaskGateway(f.conn), f.Breaker())
}

// GoalGateway returns the goal rows of the remote store behind the breaker.
func (f *RepositoryFactory) GoalGateway() goal.Gateway {
	return persistence.NewBreakerGoalGateway(persistence.NewSQLGoalGateway(f.conn), f.Breaker())
}

// SessionStore returns the store selected by SESSION_STORE. Persistent
// stores seal sessions when ENCRYPTION_KEY is set.
func (f *RepositoryFactory) SessionStore() (identity.SessionStore, error) {
	var enc crypto.Encrypter
	if f.cfg.EncryptionKey != "" {
		aes, err := crypto.NewAESGCMFromBase64Key(f.cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("ENCRYPTION_KEY: %w", err)
		}
		enc = aes
	}

	switch f.cfg.SessionStore {
	case config.SessionStoreMemory:
		return identityPersistence.NewMemorySessionStore(), nil
	case config.SessionStoreSQL, "":
		return identityPersistence.NewSQLSessionStore(f.conn, f.cfg.Profile).WithEncrypter(enc), nil
	case config.SessionStoreRedis:
		if f.redis == nil {
			return nil, fmt.Errorf("session store %q: redis is not connected", f.cfg.SessionStore)
		}
		return identityPersistence.NewRedisSessionStore(f.redis, f.cfg.Profile, f.cfg.SessionTTL).WithEncrypter(enc), nil
	default:
		return nil, fmt.Errorf("unsupported session store: %s", f.cfg.SessionStore)
	}
}
