package goal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/grim/adapter/cli"
	"github.com/felixgeelhaar/grim/internal/productivity/application/commands"
)

// Cmd is the goal command group. Without a subcommand it shows the grid.
var Cmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage the goal grid",
	Long: `The goal grid has one slot per horizon (yearly, quarterly, weekly)
and category (professional, private). Each slot holds at most one goal.`,
	Aliases: []string{"goals"},
	RunE:    runGrid,
}

var (
	setProgress int
	setReason   string
)

var setCmd = &cobra.Command{
	Use:   "set <horizon> <category> <title>",
	Short: "Place a goal in a free slot",
	Long: `Place a goal in the slot named by horizon and category.

Examples:
  grim goal set yearly professional "Grow membership to 5k" --progress 20
  grim goal set weekly private "Three gym sessions" --reason "energy"`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.SessionApp()
		if err != nil {
			return err
		}

		g, err := app.GoalHandler.Create(cmd.Context(), commands.CreateGoalCommand{
			Horizon:  args[0],
			Category: args[1],
			Title:    args[2],
			Progress: setProgress,
			Reason:   setReason,
		})
		if err != nil {
			return fmt.Errorf("failed to set goal: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Goal set: %s (%s %s, %s)\n", g.Title, g.Horizon, g.Category, cli.ShortID(g.ID))
		return cli.Commit(cmd)
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress <goal-id> <percent>",
	Short: "Set a goal's progress (0 to 100)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.SessionApp()
		if err != nil {
			return err
		}
		ref, err := app.ResolveGoalID(args[0])
		if err != nil {
			return err
		}
		var percent int
		if _, err := fmt.Sscan(args[1], &percent); err != nil {
			return fmt.Errorf("invalid progress %q: %w", args[1], err)
		}

		g, err := app.GoalHandler.UpdateProgress(cmd.Context(), commands.UpdateGoalProgressCommand{GoalID: ref, Progress: percent})
		if err != nil {
			return fmt.Errorf("failed to update goal: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d%%\n", g.Title, cli.ProgressBar(g.Progress, 20), g.Progress)
		return cli.Commit(cmd)
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <goal-id>",
	Short:   "Free a goal slot",
	Aliases: []string{"rm", "clear"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.SessionApp()
		if err != nil {
			return err
		}
		ref, err := app.ResolveGoalID(args[0])
		if err != nil {
			return err
		}

		if err := app.GoalHandler.Delete(cmd.Context(), commands.DeleteGoalCommand{GoalID: ref}); err != nil {
			return fmt.Errorf("failed to delete goal: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Goal removed.")
		return cli.Commit(cmd)
	},
}

var gridCmd = &cobra.Command{
	Use:     "grid",
	Short:   "Show the goal grid",
	Aliases: []string{"ls", "list"},
	RunE:    runGrid,
}

func runGrid(cmd *cobra.Command, args []string) error {
	app, err := cli.SessionApp()
	if err != nil {
		return err
	}

	grid, err := app.GoalGridHandler.Handle(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load goals: %w", err)
	}
	out := cmd.OutOrStdout()
	if cli.JSONOutput() {
		return cli.PrintJSON(out, grid)
	}

	for _, c := range grid.Cells {
		slot := fmt.Sprintf("%s / %s", c.Horizon, c.Category)
		if c.Goal == nil {
			fmt.Fprintf(out, "%-26s -\n", slot)
			continue
		}
		fmt.Fprintf(out, "%-26s %s %3d%%  %s (%s)\n",
			slot, cli.ProgressBar(c.Goal.Progress, 10), c.Goal.Progress, c.Goal.Title, cli.ShortID(c.Goal.ID))
		if c.Goal.Reason != "" && cli.Verbose() {
			fmt.Fprintf(out, "%-26s why: %s\n", "", c.Goal.Reason)
		}
	}
	cli.Rule(out, 60)
	fmt.Fprintf(out, "Average progress: %d%%\n", grid.AverageProgress)
	return nil
}

func init() {
	setCmd.Flags().IntVar(&setProgress, "progress", 0, "initial progress (0 to 100)")
	setCmd.Flags().StringVar(&setReason, "reason", "", "why this goal matters")

	Cmd.AddCommand(gridCmd)
	Cmd.AddCommand(setCmd)
	Cmd.AddCommand(progressCmd)
	Cmd.AddCommand(deleteCmd)
}
