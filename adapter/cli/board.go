package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/grim/internal/productivity/application/queries"
)

var boardFilter queries.TaskFilter

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the kanban board",
	Long: `Show every column of the board in order. Filters hide tasks but
keep the columns.

Examples:
  grim board
  grim board --search podcast
  grim board --priority critical --category professional`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := SessionApp()
		if err != nil {
			return err
		}

		columns, err := app.BoardQueryHandler.Handle(cmd.Context(), queries.BoardQuery{TaskFilter: boardFilter})
		if err != nil {
			return fmt.Errorf("failed to load board: %w", err)
		}
		out := cmd.OutOrStdout()
		if JSONOutput() {
			return PrintJSON(out, columns)
		}

		for _, col := range columns {
			fmt.Fprintf(out, "\n%s (%d)\n", col.Title, len(col.Tasks))
			Rule(out, 50)
			if len(col.Tasks) == 0 {
				fmt.Fprintln(out, "  -")
				continue
			}
			for _, t := range col.Tasks {
				PrintTaskLine(out, "  ", t)
			}
		}
		return nil
	},
}

// AddFilterFlags binds the shared task filter flags to f.
func AddFilterFlags(cmd *cobra.Command, f *queries.TaskFilter) {
	cmd.Flags().StringVarP(&f.Search, "search", "s", "", "match title or initiative")
	cmd.Flags().StringVarP(&f.Priority, "priority", "p", "", "critical, high, medium or low")
	cmd.Flags().StringVar(&f.Category, "category", "", "professional or private")
	cmd.Flags().StringVar(&f.Initiative, "initiative", "", "initiative name")
}

func init() {
	AddFilterFlags(boardCmd, &boardFilter)
	rootCmd.AddCommand(boardCmd)
}
