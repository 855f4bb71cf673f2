package plan

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/grim/adapter/cli"
	"github.com/felixgeelhaar/grim/internal/productivity/application/commands"
	"github.com/felixgeelhaar/grim/internal/productivity/application/queries"
)

// Cmd is the plan command group. Without a subcommand it shows today.
var Cmd = &cobra.Command{
	Use:   "plan",
	Short: "Work with the weekly day plan",
	Long: `The day plan has the same blocks every weekday. Blocks are named
by day and index, for example "Mon-0" or "Thu-3".

Examples:
  grim plan
  grim plan show Tue
  grim plan assign Wed-1 1a2b3c4d
  grim plan workout Wed-5
  grim plan eat Wed-4 "salad and soup"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showDay(cmd, "")
	},
}

var showCmd = &cobra.Command{
	Use:   "show [day]",
	Short: "Show one day (Mon to Fri, default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day := ""
		if len(args) == 1 {
			day = args[0]
		}
		return showDay(cmd, day)
	},
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show the whole week",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.SessionApp()
		if err != nil {
			return err
		}
		week, err := app.DayPlanHandler.Week(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load week: %w", err)
		}
		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, week)
		}
		for _, day := range week {
			printDay(out, day)
		}
		return nil
	},
}

var assignCmd = &cobra.Command{
	Use:   "assign <block> <task-id>",
	Short: "Put a task in a block",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.SessionApp()
		if err != nil {
			return err
		}
		ref, err := app.ResolveTaskID(args[1])
		if err != nil {
			return err
		}

		added, err := app.PlanHandler.Assign(cmd.Context(), commands.BlockTaskCommand{Block: args[0], TaskID: ref})
		if err != nil {
			return fmt.Errorf("failed to assign task: %w", err)
		}
		if !added {
			fmt.Fprintf(cmd.OutOrStdout(), "Task already in %s\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task assigned to %s\n", args[0])
		return cli.Commit(cmd)
	},
}

var unassignCmd = &cobra.Command{
	Use:   "unassign <block> <task-id>",
	Short: "Take a task out of a block",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.SessionApp()
		if err != nil {
			return err
		}
		ref, err := app.ResolveTaskID(args[1])
		if err != nil {
			return err
		}

		removed, err := app.PlanHandler.Unassign(cmd.Context(), commands.BlockTaskCommand{Block: args[0], TaskID: ref})
		if err != nil {
			return fmt.Errorf("failed to unassign task: %w", err)
		}
		if !removed {
			fmt.Fprintf(cmd.OutOrStdout(), "Task was not in %s\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task removed from %s\n", args[0])
		return cli.Commit(cmd)
	},
}

var workoutCmd = &cobra.Command{
	Use:   "workout <block>",
	Short: "Toggle the micro-workout flag of a block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.SessionApp()
		if err != nil {
			return err
		}

		on, err := app.PlanHandler.ToggleWorkout(cmd.Context(), commands.ToggleWorkoutCommand{Block: args[0]})
		if err != nil {
			return fmt.Errorf("failed to toggle workout: %w", err)
		}
		state := "off"
		if on {
			state = "on"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Micro-workout %s for %s\n", state, args[0])
		return cli.Commit(cmd)
	},
}

var eatCmd = &cobra.Command{
	Use:   "eat <block> <note>",
	Short: "Set the meal note of a block",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.SessionApp()
		if err != nil {
			return err
		}

		note := strings.Join(args[1:], " ")
		if err := app.PlanHandler.SetEatNote(cmd.Context(), commands.EatNoteCommand{Block: args[0], Text: note}); err != nil {
			return fmt.Errorf("failed to set note: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Note saved for %s\n", args[0])
		return cli.Commit(cmd)
	},
}

func showDay(cmd *cobra.Command, day string) error {
	app, err := cli.SessionApp()
	if err != nil {
		return err
	}
	plan, err := app.DayPlanHandler.Handle(cmd.Context(), queries.DayPlanQuery{Day: day})
	if err != nil {
		return fmt.Errorf("failed to load plan: %w", err)
	}
	out := cmd.OutOrStdout()
	if cli.JSONOutput() {
		return cli.PrintJSON(out, plan)
	}
	printDay(out, *plan)
	return nil
}

func printDay(out io.Writer, plan queries.DayPlanDTO) {
	fmt.Fprintf(out, "\n  %s\n", plan.Day)
	cli.Rule(out, 60)
	for _, b := range plan.Blocks {
		marks := ""
		if b.MicroWorkout {
			marks += " [workout]"
		}
		fmt.Fprintf(out, "  %-6s %s  %-28s %s%s\n", b.Key, b.Time, b.Activity, b.Type, marks)
		for _, t := range b.Tasks {
			cli.PrintTaskLine(out, "           ", t)
		}
		if b.EatNote != "" {
			fmt.Fprintf(out, "           eat: %s\n", b.EatNote)
		}
	}
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(weekCmd)
	Cmd.AddCommand(assignCmd)
	Cmd.AddCommand(unassignCmd)
	Cmd.AddCommand(workoutCmd)
	Cmd.AddCommand(eatCmd)
}
