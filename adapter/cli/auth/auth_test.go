package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/grim/adapter/cli"
	"github.com/felixgeelhaar/grim/internal/app/apptest"
	"github.com/felixgeelhaar/grim/internal/identity/application/oauth"
	"github.com/felixgeelhaar/grim/internal/productivity/application/commands"
)

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func resetFlags(t *testing.T) {
	t.Helper()
	reset := func() { loginUserID, loginEmail, loginLocal, loginCode = "", "", false, "" }
	reset()
	t.Cleanup(reset)
}

func TestLocalLoginStatusLogout(t *testing.T) {
	container := apptest.Container(t)
	app := cli.NewApp(container, apptest.UserID)
	cli.SetApp(app)
	t.Cleanup(func() { cli.SetApp(nil) })
	resetFlags(t)

	out, err := run(t, statusCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")

	loginEmail = "me@example.com"
	out, err = run(t, loginCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as "+apptest.UserID.String())
	assert.Contains(t, out, "Board loaded: 0 tasks, 0 goals")

	out, err = run(t, statusCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "me@example.com")
	assert.Contains(t, out, "local sign-in")

	_, err = container.CreateTaskHandler.Handle(context.Background(), commands.CreateTaskCommand{Title: "Queued before logout"})
	require.NoError(t, err)

	out, err = run(t, logoutCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")
	assert.Nil(t, container.Sessions.CurrentSession())
	assert.Empty(t, container.Store.Tasks())

	// The queued commit reached the database before the session ended.
	remote, err := container.TaskGateway.List(context.Background(), apptest.UserID)
	require.NoError(t, err)
	assert.Len(t, remote, 1)
}

func TestLogin_InvalidInput(t *testing.T) {
	container := apptest.Container(t)
	cli.SetApp(cli.NewApp(container, apptest.UserID))
	t.Cleanup(func() { cli.SetApp(nil) })
	resetFlags(t)

	loginUserID = "not-a-uuid"
	_, err := run(t, loginCmd)
	assert.ErrorContains(t, err, "invalid --user-id")

	loginUserID = ""
	loginEmail = "nope"
	_, err = run(t, loginCmd)
	assert.ErrorContains(t, err, "invalid email")
	assert.Nil(t, container.Sessions.CurrentSession())
}

func TestOAuthLogin_UsesTokenIdentity(t *testing.T) {
	const remoteUser = "22222222-2222-2222-2222-222222222222"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"user_id":      remoteUser,
			"email":        "remote@example.com",
		})
	}))
	t.Cleanup(srv.Close)

	svc, err := oauth.NewService(oauth.Config{
		ClientID:    "grim-cli",
		AuthURL:     "http://auth.example/authorize",
		TokenURL:    srv.URL,
		RedirectURL: "http://localhost:8085/callback",
	})
	require.NoError(t, err)

	container := apptest.Container(t)
	app := cli.NewApp(container, apptest.UserID)
	app.AuthService = svc
	cli.SetApp(app)
	t.Cleanup(func() { cli.SetApp(nil) })
	resetFlags(t)

	loginCmd.SetIn(strings.NewReader("the-code\n"))
	t.Cleanup(func() { loginCmd.SetIn(nil) })

	out, err := run(t, loginCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "http://auth.example/authorize")
	assert.Contains(t, out, "Signed in as "+remoteUser)

	s := container.Sessions.CurrentSession()
	require.NotNil(t, s)
	assert.Equal(t, remoteUser, s.UserID.String())
	assert.Equal(t, "remote@example.com", s.Email.String())
	require.NotNil(t, s.Token)
	assert.Equal(t, "access", s.Token.AccessToken)
}

func TestReadLine(t *testing.T) {
	line, err := readLine(strings.NewReader("  abc \n"))
	require.NoError(t, err)
	assert.Equal(t, "abc", line)

	line, err = readLine(strings.NewReader("no-newline"))
	require.NoError(t, err)
	assert.Equal(t, "no-newline", line)

	_, err = readLine(strings.NewReader(""))
	assert.Error(t, err)
}
