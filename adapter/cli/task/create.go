package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/grim/adapter/cli"
	"github.com/felixgeelhaar/grim/internal/productivity/application/commands"
)

var (
	priority    string
	category    string
	initiative  string
	estimate    string
	column      string
	description string
	dueDate     string
	tags        string
)

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new task",
	Long: `Create a new task with a title and optional properties. Unset
properties take the board defaults: medium priority, professional,
Retain Customers, backlog.

Examples:
  grim task create "Fix login redirect bug" -p critical --initiative "Bug Fixes"
  grim task create "Record episode 12" --initiative "Grim Podcast" -e "2h"
  grim task create "Write docs" --column sprint --due 2026-03-20 --tags docs,writing`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.SessionApp()
		if err != nil {
			return err
		}

		result, err := app.CreateTaskHandler.Handle(cmd.Context(), commands.CreateTaskCommand{
			Title:       args[0],
			Description: description,
			Priority:    priority,
			Category:    category,
			Initiative:  initiative,
			Estimate:    estimate,
			Column:      column,
			DueDate:     dueDate,
			Tags:        tags,
		})
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			if err := cli.PrintJSON(out, result.Task); err != nil {
				return err
			}
		} else {
			fmt.Fprintln(out, "Task created!")
			fmt.Fprintf(out, "  ID:         %s\n", result.Task.ID)
			fmt.Fprintf(out, "  Title:      %s\n", result.Task.Title)
			fmt.Fprintf(out, "  Priority:   %s\n", result.Task.Priority)
			fmt.Fprintf(out, "  Initiative: %s\n", result.Task.Initiative)
			fmt.Fprintf(out, "  Column:     %s\n", result.Task.Column)
		}

		return cli.Commit(cmd)
	},
}

func init() {
	createCmd.Flags().StringVarP(&priority, "priority", "p", "", "critical, high, medium or low")
	createCmd.Flags().StringVar(&category, "category", "", "professional or private")
	createCmd.Flags().StringVarP(&initiative, "initiative", "i", "", "initiative name")
	createCmd.Flags().StringVarP(&estimate, "estimate", "e", "", "free-form estimate, e.g. \"90 min\"")
	createCmd.Flags().StringVar(&column, "column", "", "backlog, sprint, in-progress, review or done")
	createCmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	createCmd.Flags().StringVar(&dueDate, "due", "", "due date (YYYY-MM-DD)")
	createCmd.Flags().StringVar(&tags, "tags", "", "comma separated tags")
}
