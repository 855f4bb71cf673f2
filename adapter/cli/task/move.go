package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/grim/adapter/cli"
	"github.com/felixgeelhaar/grim/internal/productivity/application/commands"
)

var moveCmd = &cobra.Command{
	Use:   "move <task-id> <column>",
	Short: "Move a task to another column",
	Long: `Move a task to another column. The task keeps its place in the
overall task order.

Examples:
  grim task move 1a2b3c4d sprint
  grim task move 1a2b3c4d review`,
	Aliases: []string{"mv"},
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return moveTo(cmd, args[0], args[1])
	},
}

var reorderIndex int

var reorderCmd = &cobra.Command{
	Use:   "reorder <task-id> <column>",
	Short: "Place a task at a position within a column",
	Long: `Place a task at --index among the tasks of a column, as if it had
been dragged there. Index 0 is the top of the column; an index past the
end places it last.

Examples:
  grim task reorder 1a2b3c4d sprint --index 0
  grim task reorder 1a2b3c4d in-progress --index 2`,
	Aliases: []string{"drag"},
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.SessionApp()
		if err != nil {
			return err
		}
		ref, err := app.ResolveTaskID(args[0])
		if err != nil {
			return err
		}

		err = app.TaskBoardHandler.Reorder(cmd.Context(), commands.ReorderTaskCommand{
			TaskID: ref,
			Column: args[1],
			Index:  reorderIndex,
		})
		if err != nil {
			return fmt.Errorf("failed to reorder task: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Task placed at %s #%d\n", args[1], reorderIndex)
		return cli.Commit(cmd)
	},
}

var startCmd = &cobra.Command{
	Use:     "start <task-id>",
	Short:   "Move a task to in-progress",
	Aliases: []string{"begin", "work"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return moveTo(cmd, args[0], "in-progress")
	},
}

var completeCmd = &cobra.Command{
	Use:     "complete <task-id>",
	Short:   "Move a task to done",
	Aliases: []string{"done"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return moveTo(cmd, args[0], "done")
	},
}

func moveTo(cmd *cobra.Command, taskRef, column string) error {
	app, err := cli.SessionApp()
	if err != nil {
		return err
	}
	ref, err := app.ResolveTaskID(taskRef)
	if err != nil {
		return err
	}

	if err := app.TaskBoardHandler.Move(cmd.Context(), commands.MoveTaskCommand{TaskID: ref, Column: column}); err != nil {
		return fmt.Errorf("failed to move task: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Task moved to %s\n", column)
	return cli.Commit(cmd)
}

func init() {
	reorderCmd.Flags().IntVar(&reorderIndex, "index", 0, "position within the column")
}
