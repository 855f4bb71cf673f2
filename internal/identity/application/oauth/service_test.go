package oauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/grim/internal/identity/application/oauth"
)

func tokenServer(t *testing.T, access string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  access,
			"refresh_token": "refresh-token",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newService(t *testing.T, tokenURL string) *oauth.Service {
	t.Helper()
	svc, err := oauth.NewService(oauth.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AuthURL:      "http://auth.example/authorize",
		TokenURL:     tokenURL,
		RedirectURL:  "http://localhost/callback",
		Scopes:       []string{"board"},
	})
	require.NoError(t, err)
	return svc
}

func TestExchange(t *testing.T) {
	srv := tokenServer(t, "access-token")
	svc := newService(t, srv.URL)

	token, err := svc.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "access-token", token.AccessToken)
	assert.Equal(t, "refresh-token", token.RefreshToken)

	_, err = svc.Exchange(context.Background(), "  ")
	assert.Error(t, err)
}

func TestTokenSource_RefreshesExpiredToken(t *testing.T) {
	srv := tokenServer(t, "fresh")
	svc := newService(t, srv.URL)

	expired := &oauth2.Token{AccessToken: "stale", RefreshToken: "r", Expiry: time.Now().Add(-time.Hour)}
	token, err := svc.TokenSource(context.Background(), expired).Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh", token.AccessToken)
}

func TestAuthURL(t *testing.T) {
	svc := newService(t, "http://token.example")

	u, err := url.Parse(svc.AuthURL("state-123"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "board", q.Get("scope"))
}

func TestNewService_ValidationErrors(t *testing.T) {
	_, err := oauth.NewService(oauth.Config{ClientID: "id"})
	assert.ErrorIs(t, err, oauth.ErrIncompleteConfig)
}

func TestScopesFromEnv(t *testing.T) {
	assert.Nil(t, oauth.ScopesFromEnv(""))
	assert.Equal(t, []string{"a", "b"}, oauth.ScopesFromEnv(" a, ,b "))
}

func TestIdentity(t *testing.T) {
	fixed := "11111111-1111-1111-1111-111111111111"

	t.Run("user_id wins", func(t *testing.T) {
		tok := (&oauth2.Token{AccessToken: "a"}).WithExtra(map[string]any{
			"user_id": fixed, "sub": "someone", "email": "a@example.com",
		})
		id, email, err := oauth.Identity(tok)
		require.NoError(t, err)
		assert.Equal(t, fixed, id.String())
		assert.Equal(t, "a@example.com", email)
	})

	t.Run("opaque sub maps to a stable id", func(t *testing.T) {
		tok := (&oauth2.Token{AccessToken: "a"}).WithExtra(map[string]any{"sub": "auth0|42"})
		first, _, err := oauth.Identity(tok)
		require.NoError(t, err)
		second, _, err := oauth.Identity(tok)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.NotEqual(t, fixed, first.String())
	})

	t.Run("no subject", func(t *testing.T) {
		_, _, err := oauth.Identity(&oauth2.Token{AccessToken: "a"})
		assert.ErrorIs(t, err, oauth.ErrNoSubject)

		_, _, err = oauth.Identity(nil)
		assert.ErrorIs(t, err, oauth.ErrNoSubject)
	})
}
