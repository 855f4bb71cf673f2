package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/grim/pkg/observability"
)

var healthCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show session, store and dependency health",
	Aliases: []string{"health"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return ErrNotInitialized
		}
		out := cmd.OutOrStdout()

		overall := app.Health.Check(cmd.Context())
		status, loadErr := app.Engine.Store().Status()

		if JSONOutput() {
			type statusView struct {
				SignedIn bool                        `json:"signed_in"`
				UserID   string                      `json:"user_id,omitempty"`
				Store    string                      `json:"store"`
				Version  uint64                      `json:"version"`
				Health   observability.OverallHealth `json:"health"`
			}
			v := statusView{Store: status.String(), Version: app.Engine.Store().Version(), Health: overall}
			if s := app.Engine.Session(); s != nil {
				v.SignedIn = true
				v.UserID = s.UserID.String()
			}
			return PrintJSON(out, v)
		}

		if s := app.Engine.Session(); s != nil {
			fmt.Fprintf(out, "Session:  %s (%s)\n", s.UserID, s.Email)
		} else {
			fmt.Fprintln(out, "Session:  signed out")
		}
		fmt.Fprintf(out, "Store:    %s (version %d)\n", status, app.Engine.Store().Version())
		if loadErr != nil {
			fmt.Fprintf(out, "          %v\n", loadErr)
		}
		fmt.Fprintf(out, "Health:   %s\n", overall.Status)

		names := make([]string, 0, len(overall.Checks))
		for name := range overall.Checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			r := overall.Checks[name]
			fmt.Fprintf(out, "  %-14s %-10s %s\n", name, r.Status, r.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
