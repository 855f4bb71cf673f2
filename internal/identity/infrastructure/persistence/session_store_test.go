package persistence_test

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/grim/internal/identity/domain"
	"github.com/felixgeelhaar/grim/internal/identity/infrastructure/persistence"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/crypto"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/migrations"
)

func stores(t *testing.T) map[string]domain.SessionStore {
	t.Helper()
	ctx := context.Background()

	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "grim.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))

	out := map[string]domain.SessionStore{
		"memory": persistence.NewMemorySessionStore(),
		"sql":    persistence.NewSQLSessionStore(conn, "test"),
	}

	// Redis runs only when a server is provided.
	if url := os.Getenv("GRIM_TEST_REDIS_URL"); url != "" {
		opts, err := redis.ParseURL(url)
		require.NoError(t, err)
		client := redis.NewClient(opts)
		t.Cleanup(func() { _ = client.Close() })
		out["redis"] = persistence.NewRedisSessionStore(client, "test-"+uuid.NewString(), time.Minute)
	}
	return out
}

func TestSessionStores(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Load(ctx)
			assert.ErrorIs(t, err, domain.ErrNoSession)

			email, err := domain.NewEmail("me@grim.dev")
			require.NoError(t, err)
			expiry := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
			s, err := domain.NewSession(uuid.New(), email, &oauth2.Token{
				AccessToken:  "access",
				RefreshToken: "refresh",
				TokenType:    "Bearer",
				Expiry:       expiry,
			}, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
			require.NoError(t, err)

			require.NoError(t, store.Save(ctx, s))
			// Saving again overwrites.
			require.NoError(t, store.Save(ctx, s))

			got, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, s.UserID, got.UserID)
			assert.Equal(t, "me@grim.dev", got.Email.String())
			require.NotNil(t, got.Token)
			assert.Equal(t, "refresh", got.Token.RefreshToken)
			assert.True(t, expiry.Equal(got.Token.Expiry))

			require.NoError(t, store.Delete(ctx))
			require.NoError(t, store.Delete(ctx))
			_, err = store.Load(ctx)
			assert.ErrorIs(t, err, domain.ErrNoSession)
		})
	}
}

func TestSessionCodec_Sealed(t *testing.T) {
	ctx := context.Background()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	enc, err := crypto.NewAESGCMFromBase64Key(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)

	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "grim.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))

	sealed := persistence.NewSQLSessionStore(conn, "sealed").WithEncrypter(enc)
	s, err := domain.NewSession(uuid.New(), domain.Email{}, &oauth2.Token{AccessToken: "secret-access"}, time.Now())
	require.NoError(t, err)
	require.NoError(t, sealed.Save(ctx, s))

	var payload string
	require.NoError(t, conn.QueryRow(ctx, `SELECT payload FROM sessions WHERE profile = 'sealed'`).Scan(&payload))
	assert.True(t, strings.HasPrefix(payload, "sealed:"))
	assert.NotContains(t, payload, "secret-access")

	got, err := sealed.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "secret-access", got.Token.AccessToken)

	// The same row read without the key cannot be opened.
	_, err = persistence.NewSQLSessionStore(conn, "sealed").Load(ctx)
	assert.ErrorIs(t, err, persistence.ErrSealedSession)
}
