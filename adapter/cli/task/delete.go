package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/grim/adapter/cli"
	"github.com/felixgeelhaar/grim/internal/productivity/application/commands"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task",
	Long: `Delete a task from the board. Day plan blocks that still list the
task stop showing it.

Examples:
  grim task delete 1a2b3c4d`,
	Aliases: []string{"rm", "archive"},
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

		if err := app.TaskBoardHandler.Delete(cmd.Context(), commands.DeleteTaskCommand{TaskID: ref}); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Task deleted!")
		return cli.Commit(cmd)
	},
}
