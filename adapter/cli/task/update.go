package task

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/grim/adapter/cli"
	"github.com/felixgeelhaar/grim/internal/productivity/application/commands"
)

var (
	updateTitle       string
	updateDescription string
	updatePriority    string
	updateCategory    string
	updateInitiative  string
	updateEstimate    string
	updateColumn      string
	updateDue         string
	updateTags        string
	clearDue          bool
)

var updateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Update a task",
	Long: `Update the properties of an existing task. Only the flags you give
are changed.

Examples:
  grim task update 1a2b3c4d --title "New title"
  grim task update 1a2b3c4d --priority high --estimate "2h"
  grim task update 1a2b3c4d --due 2026-12-31
  grim task update 1a2b3c4d --clear-due`,
	Aliases: []string{"edit", "modify"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.SessionApp()
		if err != nil {
			return err
		}
		ref, err := app.ResolveTaskID(args[0])
		if err != nil {
			return err
		}

		update := commands.UpdateTaskCommand{TaskID: ref}
		flags := cmd.Flags()
		bind := func(name string, value *string, field **string) {
			if flags.Changed(name) {
				*field = value
			}
		}
		bind("title", &updateTitle, &update.Title)
		bind("description", &updateDescription, &update.Description)
		bind("priority", &updatePriority, &update.Priority)
		bind("category", &updateCategory, &update.Category)
		bind("initiative", &updateInitiative, &update.Initiative)
		bind("estimate", &updateEstimate, &update.Estimate)
		bind("column", &updateColumn, &update.Column)
		bind("due", &updateDue, &update.DueDate)
		bind("tags", &updateTags, &update.Tags)
		if clearDue {
			empty := ""
			update.DueDate = &empty
		}

		if !anyChange(update) {
			return errors.New("no changes given - see 'grim task update --help'")
		}

		t, err := app.UpdateTaskHandler.Handle(cmd.Context(), update)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			if err := cli.PrintJSON(out, t); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(out, "Task updated: %s (%s)\n", t.Title, cli.ShortID(t.ID))
		}
		return cli.Commit(cmd)
	},
}

func anyChange(c commands.UpdateTaskCommand) bool {
	for _, f := range []*string{c.Title, c.Description, c.Priority, c.Category, c.Initiative, c.Estimate, c.Column, c.DueDate, c.Tags} {
		if f != nil {
			return true
		}
	}
	return false
}

func parseTaskID(ref string) (uuid.UUID, error) {
	id, err := uuid.Parse(ref)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid task ID: %w", err)
	}
	return id, nil
}

func init() {
	updateCmd.Flags().StringVarP(&updateTitle, "title", "t", "", "new title")
	updateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "new description")
	updateCmd.Flags().StringVarP(&updatePriority, "priority", "p", "", "critical, high, medium or low")
	updateCmd.Flags().StringVar(&updateCategory, "category", "", "professional or private")
	updateCmd.Flags().StringVarP(&updateInitiative, "initiative", "i", "", "initiative name")
	updateCmd.Flags().StringVarP(&updateEstimate, "estimate", "e", "", "free-form estimate")
	updateCmd.Flags().StringVar(&updateColumn, "column", "", "move to this column")
	updateCmd.Flags().StringVar(&updateDue, "due", "", "due date (YYYY-MM-DD)")
	updateCmd.Flags().StringVar(&updateTags, "tags", "", "comma separated tags, replaces existing ones")
	updateCmd.Flags().BoolVar(&clearDue, "clear-due", false, "remove the due date")
	updateCmd.MarkFlagsMutuallyExclusive("due", "clear-due")
}
