package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/grim/internal/productivity/application/queries"
)

var dashboardCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's dashboard",
	Long: `Display the headline numbers of the board:
- Task counts per stage and the completion rate
- Average goal progress
- Deep work blocks of today's plan
- The tasks to focus on next

Examples:
  grim today`,
	Aliases: []string{"dashboard", "dash", "now"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := SessionApp()
		if err != nil {
			return err
		}

		d, err := app.DashboardHandler.Handle(cmd.Context(), queries.DashboardQuery{})
		if err != nil {
			return fmt.Errorf("failed to load dashboard: %w", err)
		}
		out := cmd.OutOrStdout()
		if JSONOutput() {
			return PrintJSON(out, d)
		}

		fmt.Fprintf(out, "\n  %s\n", d.Day)
		fmt.Fprintln(out, strings.Repeat("=", 60))
		fmt.Fprintf(out, "  Tasks:        %d total | %d sprint | %d in progress | %d done\n",
			d.TotalTasks, d.Sprint, d.InProgress, d.Done)
		fmt.Fprintf(out, "  Critical:     %d\n", d.Critical)
		fmt.Fprintf(out, "  Completion:   %s %d%%\n", ProgressBar(d.CompletionRate, 20), d.CompletionRate)
		fmt.Fprintf(out, "  Goals:        %s %d%%\n", ProgressBar(d.AvgGoalProgress, 20), d.AvgGoalProgress)
		fmt.Fprintf(out, "  Deep work:    %d blocks today\n", d.DeepWorkBlocks)

		fmt.Fprintln(out, "\n  FOCUS")
		Rule(out, 60)
		if len(d.Focus) == 0 {
			fmt.Fprintln(out, "    Nothing open. Great job!")
		}
		for _, f := range d.Focus {
			PrintTaskLine(out, "    ", f.Task)
		}
		fmt.Fprintln(out)
		return nil
	},
}

var focusLimit int

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Rank open tasks by what to work on next",
	Long: `Rank every task that is not done by priority, due date, estimate and
stage, and show why each one scored the way it did.

Examples:
  grim focus
  grim focus --limit 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := SessionApp()
		if err != nil {
			return err
		}

		d, err := app.DashboardHandler.Handle(cmd.Context(), queries.DashboardQuery{FocusLimit: focusLimit})
		if err != nil {
			return fmt.Errorf("failed to rank tasks: %w", err)
		}
		out := cmd.OutOrStdout()
		if JSONOutput() {
			return PrintJSON(out, d.Focus)
		}

		if len(d.Focus) == 0 {
			fmt.Fprintln(out, "No open tasks.")
			return nil
		}
		for i, f := range d.Focus {
			fmt.Fprintf(out, "%2d. %.2f  ", i+1, f.Score)
			PrintTaskLine(out, "", f.Task)
			if Verbose() {
				fmt.Fprintf(out, "      %s\n", f.Explanation)
			}
		}
		return nil
	},
}

func init() {
	focusCmd.Flags().IntVarP(&focusLimit, "limit", "n", 5, "number of tasks to show")
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(focusCmd)
}
