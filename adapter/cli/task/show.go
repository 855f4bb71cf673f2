package task

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/grim/adapter/cli"
	"github.com/felixgeelhaar/grim/internal/productivity/application/queries"
)

var showCmd = &cobra.Command{
	Use:     "show <task-id>",
	Short:   "Show a task",
	Aliases: []string{"get", "view"},
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
		id, err := parseTaskID(ref)
		if err != nil {
			return err
		}

		t, err := app.GetTaskHandler.Handle(cmd.Context(), queries.GetTaskQuery{TaskID: id})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, t)
		}

		fmt.Fprintf(out, "%s %s\n", cli.PriorityIcon(t.Priority), t.Title)
		cli.Rule(out, 50)
		fmt.Fprintf(out, "  ID:          %s\n", t.ID)
		fmt.Fprintf(out, "  Column:      %s\n", t.Column)
		fmt.Fprintf(out, "  Priority:    %s\n", t.Priority)
		fmt.Fprintf(out, "  Category:    %s\n", t.Category)
		fmt.Fprintf(out, "  Initiative:  %s\n", t.Initiative)
		if t.Estimate != "" {
			fmt.Fprintf(out, "  Estimate:    %s\n", t.Estimate)
		}
		if t.DueDate != "" {
			fmt.Fprintf(out, "  Due:         %s\n", t.DueDate)
		}
		if len(t.Tags) > 0 {
			fmt.Fprintf(out, "  Tags:        %s\n", strings.Join(t.Tags, ", "))
		}
		if t.Description != "" {
			fmt.Fprintf(out, "\n  %s\n", t.Description)
		}
		if !t.CreatedAt.IsZero() {
			fmt.Fprintf(out, "\n  Created %s, updated %s\n",
				t.CreatedAt.Format("2006-01-02 15:04"), t.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}
