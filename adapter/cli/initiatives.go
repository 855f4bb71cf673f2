package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initiativesCmd = &cobra.Command{
	Use:     "initiatives",
	Short:   "Show progress per initiative",
	Aliases: []string{"init"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := SessionApp()
		if err != nil {
			return err
		}

		rows, err := app.InitiativesHandler.Handle(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load initiatives: %w", err)
		}
		out := cmd.OutOrStdout()
		if JSONOutput() {
			return PrintJSON(out, rows)
		}

		for _, r := range rows {
			fmt.Fprintf(out, "%-22s %s %3d%%  %d tasks, %d active, %d done\n",
				r.Name, ProgressBar(r.Progress, 20), r.Progress, r.Tasks, r.Active, r.Done)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initiativesCmd)
}
