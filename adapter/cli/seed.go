package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/grim/internal/productivity/application/commands"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill an empty board with sample tasks and goals",
	Long: `Add the sample tasks and goals to the signed-in user's board.

Seeding refuses to touch a board that already holds data unless --force
is given. Goals whose slot is taken are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := SessionApp()
		if err != nil {
			return err
		}

		result, err := app.SeedHandler.Handle(cmd.Context(), commands.SeedCommand{Force: seedForce})
		if errors.Is(err, commands.ErrBoardNotEmpty) {
			return fmt.Errorf("%w (use --force to seed anyway)", err)
		}
		if err != nil {
			return fmt.Errorf("failed to seed board: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Seeded %d tasks and %d goals", result.Tasks, result.Goals)
		if result.SkippedGoals > 0 {
			fmt.Fprintf(out, " (%d goal slots already taken)", result.SkippedGoals)
		}
		fmt.Fprintln(out)

		return Commit(cmd)
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "seed even when the board is not empty")
	rootCmd.AddCommand(seedCmd)
}
