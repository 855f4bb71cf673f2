package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/grim/adapter/cli"
	"github.com/felixgeelhaar/grim/internal/identity/application/oauth"
	identity "github.com/felixgeelhaar/grim/internal/identity/domain"
)

// Cmd is the auth command group.
var Cmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in and out",
	Long: `Sign in to load your board. The session is kept between runs, so
later commands work on the same board until you sign out.`,
}

var (
	loginUserID string
	loginEmail  string
	loginLocal  bool
	loginCode   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and load the board",
	Long: `Sign in through the configured OAuth provider, or locally when no
provider is configured or --local is given. A local sign-in uses
--user-id, falling back to GRIM_USER_ID.

Examples:
  grim auth login
  grim auth login --code 4/0AbC...
  grim auth login --local --email me@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil {
			return cli.ErrNotInitialized
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		var (
			userID = app.DefaultUserID
			email  = loginEmail
			err    error
		)
		if loginUserID != "" {
			if userID, err = uuid.Parse(loginUserID); err != nil {
				return fmt.Errorf("invalid --user-id: %w", err)
			}
		}

		session := sessionArgs{userID: userID, email: email}
		if !loginLocal && app.AuthService != nil {
			if session, err = oauthLogin(cmd, app.AuthService, session); err != nil {
				return err
			}
		}

		mail, err := parseEmail(session.email)
		if err != nil {
			return err
		}
		if _, err := app.Sessions.SignIn(ctx, session.userID, mail, session.token); err != nil {
			return fmt.Errorf("failed to sign in: %w", err)
		}
		if err := app.Engine.WaitForLoad(ctx); err != nil {
			return fmt.Errorf("signed in, but the board did not load: %w", err)
		}

		st := app.Engine.Store()
		fmt.Fprintf(out, "Signed in as %s\n", session.userID)
		fmt.Fprintf(out, "Board loaded: %d tasks, %d goals\n", len(st.Tasks()), len(st.Goals()))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the local board",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil {
			return cli.ErrNotInitialized
		}
		// Pending commits belong to the old session; send them first.
		if err := cli.Commit(cmd); err != nil {
			return err
		}
		if err := app.Sessions.SignOut(cmd.Context()); err != nil {
			return fmt.Errorf("failed to sign out: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show who is signed in",
	Aliases: []string{"whoami"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil {
			return cli.ErrNotInitialized
		}
		out := cmd.OutOrStdout()
		s := app.Sessions.CurrentSession()
		if s == nil {
			fmt.Fprintln(out, "Not signed in.")
			return nil
		}
		if cli.JSONOutput() {
			s.Token = nil
			return cli.PrintJSON(out, s)
		}
		fmt.Fprintf(out, "User:    %s\n", s.UserID)
		if !s.Email.IsZero() {
			fmt.Fprintf(out, "Email:   %s\n", s.Email)
		}
		fmt.Fprintf(out, "Since:   %s\n", s.StartedAt.Format("2006-01-02 15:04"))
		switch {
		case s.Token == nil:
			fmt.Fprintln(out, "Token:   none (local sign-in)")
		case s.Token.Expiry.IsZero():
			fmt.Fprintln(out, "Token:   does not expire")
		default:
			fmt.Fprintf(out, "Token:   expires %s\n", s.Token.Expiry.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil {
			return cli.ErrNotInitialized
		}
		if app.AuthService == nil {
			return errors.New("auth service not configured")
		}
		s := app.Sessions.CurrentSession()
		if s == nil {
			return cli.ErrNotSignedIn
		}
		if s.Token == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Local session, nothing to refresh.")
			return nil
		}
		ts := app.AuthService.TokenSource(cmd.Context(), s.Token)
		if err := app.Sessions.Refresh(cmd.Context(), ts); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Token refreshed.")
		return nil
	},
}

type sessionArgs struct {
	userID uuid.UUID
	email  string
	token  *oauth2.Token
}

func oauthLogin(cmd *cobra.Command, service *oauth.Service, fallback sessionArgs) (sessionArgs, error) {
	code := loginCode
	if code == "" {
		state := uuid.New().String()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Visit this URL to authorize grim:\n%s\n", service.AuthURL(state))
		fmt.Fprintf(out, "\nState: %s\n", state)
		fmt.Fprint(out, "\nEnter the authorization code: ")

		var err error
		if code, err = readLine(cmd.InOrStdin()); err != nil {
			return fallback, fmt.Errorf("failed to read code: %w", err)
		}
	}

	token, err := service.Exchange(cmd.Context(), code)
	if err != nil {
		return fallback, err
	}

	result := fallback
	result.token = token
	id, email, err := oauth.Identity(token)
	switch {
	case err == nil:
		result.userID = id
		if result.email == "" {
			result.email = email
		}
	case errors.Is(err, oauth.ErrNoSubject) && loginUserID != "":
		// The provider does not name the user; trust --user-id.
	default:
		return fallback, fmt.Errorf("%w - pass --user-id to sign in anyway", err)
	}
	return result, nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func parseEmail(raw string) (identity.Email, error) {
	if raw == "" {
		return identity.Email{}, nil
	}
	email, err := identity.NewEmail(raw)
	if err != nil {
		return identity.Email{}, fmt.Errorf("invalid email: %w", err)
	}
	return email, nil
}

func init() {
	loginCmd.Flags().StringVar(&loginUserID, "user-id", "", "user id for a local sign-in")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "email to show for the session")
	loginCmd.Flags().BoolVar(&loginLocal, "local", false, "skip OAuth even when it is configured")
	loginCmd.Flags().StringVar(&loginCode, "code", "", "authorization code, skips the prompt")

	Cmd.AddCommand(loginCmd)
	Cmd.AddCommand(logoutCmd)
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(refreshCmd)
}
