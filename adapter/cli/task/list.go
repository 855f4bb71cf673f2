package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/grim/adapter/cli"
	"github.com/felixgeelhaar/grim/internal/productivity/application/queries"
)

var (
	filter     queries.TaskFilter
	listColumn string
	limit      int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List tasks in board order with optional filters.

Examples:
  grim task list
  grim task list --column sprint
  grim task list --priority critical --initiative "Bug Fixes"
  grim task list --search podcast --limit 5`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.SessionApp()
		if err != nil {
			return err
		}

		tasks, err := app.ListTasksHandler.Handle(cmd.Context(), queries.ListTasksQuery{
			TaskFilter: filter,
			Column:     listColumn,
			Limit:      limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, tasks)
		}
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks found.")
			return nil
		}

		fmt.Fprintf(out, "Tasks (%d):\n", len(tasks))
		cli.Rule(out, 60)
		for _, t := range tasks {
			cli.PrintTaskLine(out, "", t)
			if cli.Verbose() {
				fmt.Fprintf(out, "    column: %s | category: %s\n", t.Column, t.Category)
			}
		}
		return nil
	},
}

func init() {
	cli.AddFilterFlags(listCmd, &filter)
	listCmd.Flags().StringVar(&listColumn, "column", "", "only tasks in this column")
	listCmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of tasks")
}
