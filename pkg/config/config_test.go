package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"APP_ENV", "LOG_LEVEL", "LOG_FORMAT", "GRIM_USER_ID", "GRIM_PROFILE",
	"DATABASE_URL", "DATABASE_DRIVER", "SQLITE_PATH",
	"REDIS_URL", "RABBITMQ_URL", "RABBITMQ_EXCHANGE",
	"COMMIT_POLL_INTERVAL", "COMMIT_BATCH_SIZE", "COMMIT_MAX_RETRIES",
	"COMMIT_BACKOFF_BASE", "COMMIT_BACKOFF_MAX", "COMMIT_DRAIN_TIMEOUT",
	"BOOTSTRAP_TIMEOUT", "FAILURE_BUFFER",
	"BREAKER_FAILURE_THRESHOLD", "BREAKER_TIMEOUT",
	"SESSION_STORE", "SESSION_TTL",
	"OAUTH_CLIENT_ID", "OAUTH_CLIENT_SECRET", "OAUTH_AUTH_URL",
	"OAUTH_TOKEN_URL", "OAUTH_REDIRECT_URL", "OAUTH_SCOPES",
	"MCP_ADDR", "MCP_AUTH_TOKEN",
}

// clearEnv unsets every key Load reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", cfg.UserID)
	assert.Equal(t, "default", cfg.Profile)

	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "auto", cfg.DatabaseDriver)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.Equal(t, "grim.events", cfg.RabbitMQExchange)

	assert.Equal(t, 100*time.Millisecond, cfg.CommitPollInterval)
	assert.Equal(t, 50, cfg.CommitBatchSize)
	assert.Equal(t, 5, cfg.CommitMaxRetries)
	assert.Equal(t, 200*time.Millisecond, cfg.CommitBackoffBase)
	assert.Equal(t, 30*time.Second, cfg.CommitBackoffMax)
	assert.Equal(t, 10*time.Second, cfg.CommitDrainTimeout)
	assert.Equal(t, 10*time.Minute, cfg.CommitRetention)
	assert.Equal(t, time.Minute, cfg.CommitCleanupInterval)

	assert.Equal(t, 30*time.Second, cfg.BootstrapTimeout)
	assert.Equal(t, 64, cfg.FailureBuffer)
	assert.Equal(t, 5, cfg.BreakerFailureThreshold)
	assert.Equal(t, 30*time.Second, cfg.BreakerTimeout)

	assert.Equal(t, SessionStoreSQL, cfg.SessionStore)
	assert.False(t, cfg.OAuthConfigured())

	assert.Equal(t, "127.0.0.1:8082", cfg.MCPAddr)
	assert.Empty(t, cfg.MCPAuthToken)

	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("GRIM_USER_ID", "11111111-1111-1111-1111-111111111111")
	t.Setenv("DATABASE_URL", "postgres://grim:grim@db:5432/grim")
	t.Setenv("COMMIT_POLL_INTERVAL", "1s")
	t.Setenv("COMMIT_MAX_RETRIES", "8")
	t.Setenv("BREAKER_TIMEOUT", "5s")
	t.Setenv("SESSION_STORE", "Redis")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("OAUTH_CLIENT_ID", "cli")
	t.Setenv("OAUTH_AUTH_URL", "https://auth.example.com/authorize")
	t.Setenv("OAUTH_TOKEN_URL", "https://auth.example.com/token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", cfg.UserID)
	assert.Equal(t, "postgres://grim:grim@db:5432/grim", cfg.DatabaseURL)
	assert.Equal(t, time.Second, cfg.CommitPollInterval)
	assert.Equal(t, 8, cfg.CommitMaxRetries)
	assert.Equal(t, 5*time.Second, cfg.BreakerTimeout)
	assert.Equal(t, SessionStoreRedis, cfg.SessionStore)
	assert.True(t, cfg.OAuthConfigured())
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMMIT_BATCH_SIZE", "lots")
	t.Setenv("COMMIT_DRAIN_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.CommitBatchSize)
	assert.Equal(t, 10*time.Second, cfg.CommitDrainTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown session store", map[string]string{"SESSION_STORE": "etcd"}},
		{"redis without url", map[string]string{"SESSION_STORE": "redis"}},
		{"zero retries", map[string]string{"COMMIT_MAX_RETRIES": "0"}},
		{"zero breaker threshold", map[string]string{"BREAKER_FAILURE_THRESHOLD": "0"}},
		{"backoff max below base", map[string]string{"COMMIT_BACKOFF_BASE": "2s", "COMMIT_BACKOFF_MAX": "1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
