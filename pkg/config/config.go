package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session store kinds.
const (
	SessionStoreMemory = "memory"
	SessionStoreSQL    = "sql"
	SessionStoreRedis  = "redis"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string
	UserID    string
	Profile   string

	// Database
	DatabaseURL    string
	DatabaseDriver string
	SQLitePath     string

	// Redis
	RedisURL string

	// RabbitMQ
	RabbitMQURL      string
	RabbitMQExchange string

	// Commit queue
	CommitPollInterval    time.Duration
	CommitBatchSize       int
	CommitMaxRetries      int
	CommitBackoffBase     time.Duration
	CommitBackoffMax      time.Duration
	CommitDrainTimeout    time.Duration
	CommitRetention       time.Duration
	CommitCleanupInterval time.Duration

	// Sync engine
	BootstrapTimeout time.Duration
	FailureBuffer    int

	// Circuit breaker
	BreakerFailureThreshold int
	BreakerTimeout          time.Duration

	// Sessions
	SessionStore string
	SessionTTL   time.Duration

	// EncryptionKey is a base64 32-byte key. When set, stored sessions
	// are sealed with AES-GCM.
	EncryptionKey string

	// OAuth
	OAuthClientID     string
	OAuthClientSecret string
	OAuthAuthURL      string
	OAuthTokenURL     string
	OAuthRedirectURL  string
	OAuthScopes       string

	// MCP
	MCPAddr      string
	MCPAuthToken string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),
		UserID:    getEnv("GRIM_USER_ID", "00000000-0000-0000-0000-000000000001"),
		Profile:   getEnv("GRIM_PROFILE", "default"),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DatabaseDriver: getEnv("DATABASE_DRIVER", "auto"),
		SQLitePath:     getEnv("SQLITE_PATH", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "grim.events"),

		CommitPollInterval:    getDurationEnv("COMMIT_POLL_INTERVAL", 100*time.Millisecond),
		CommitBatchSize:       getIntEnv("COMMIT_BATCH_SIZE", 50),
		CommitMaxRetries:      getIntEnv("COMMIT_MAX_RETRIES", 5),
		CommitBackoffBase:     getDurationEnv("COMMIT_BACKOFF_BASE", 200*time.Millisecond),
		CommitBackoffMax:      getDurationEnv("COMMIT_BACKOFF_MAX", 30*time.Second),
		CommitDrainTimeout:    getDurationEnv("COMMIT_DRAIN_TIMEOUT", 10*time.Second),
		CommitRetention:       getDurationEnv("COMMIT_RETENTION", 10*time.Minute),
		CommitCleanupInterval: getDurationEnv("COMMIT_CLEANUP_INTERVAL", time.Minute),

		BootstrapTimeout: getDurationEnv("BOOTSTRAP_TIMEOUT", 30*time.Second),
		FailureBuffer:    getIntEnv("FAILURE_BUFFER", 64),

		BreakerFailureThreshold: getIntEnv("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerTimeout:          getDurationEnv("BREAKER_TIMEOUT", 30*time.Second),

		SessionStore:  strings.ToLower(getEnv("SESSION_STORE", SessionStoreSQL)),
		SessionTTL:    getDurationEnv("SESSION_TTL", 30*24*time.Hour),
		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),

		OAuthClientID:     getEnv("OAUTH_CLIENT_ID", ""),
		OAuthClientSecret: getEnv("OAUTH_CLIENT_SECRET", ""),
		OAuthAuthURL:      getEnv("OAUTH_AUTH_URL", ""),
		OAuthTokenURL:     getEnv("OAUTH_TOKEN_URL", ""),
		OAuthRedirectURL:  getEnv("OAUTH_REDIRECT_URL", "http://localhost:8085/callback"),
		OAuthScopes:       getEnv("OAUTH_SCOPES", ""),

		MCPAddr:      getEnv("MCP_ADDR", "127.0.0.1:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.SessionStore {
	case SessionStoreMemory, SessionStoreSQL:
	case SessionStoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: SESSION_STORE=redis needs REDIS_URL", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown SESSION_STORE %q", ErrInvalidConfig, c.SessionStore)
	}
	if c.CommitMaxRetries < 1 {
		return fmt.Errorf("%w: COMMIT_MAX_RETRIES must be at least 1", ErrInvalidConfig)
	}
	if c.BreakerFailureThreshold < 1 {
		return fmt.Errorf("%w: BREAKER_FAILURE_THRESHOLD must be at least 1", ErrInvalidConfig)
	}
	if c.CommitBackoffMax < c.CommitBackoffBase {
		return fmt.Errorf("%w: COMMIT_BACKOFF_MAX is below COMMIT_BACKOFF_BASE", ErrInvalidConfig)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// OAuthConfigured reports whether the authorization-code flow can run.
func (c *Config) OAuthConfigured() bool {
	return c.OAuthClientID != "" && c.OAuthAuthURL != "" && c.OAuthTokenURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
