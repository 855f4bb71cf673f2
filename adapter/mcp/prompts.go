package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common board workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("daily_planning").
		Description("Plan the day: pick focus tasks and place them in today's blocks.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Daily Planning Session", `Help me plan my day. Please:

1. Read today's plan from the grim://plan/today resource
2. Read the dashboard from grim://dashboard
3. Look at the active tasks in grim://tasks/active

Based on this:
- Pick the 3 tasks I should focus on today and say why
- Assign them to free deep work blocks with the plan.assign tool
- Point out blocks that have more tasks than fit
- Suggest a micro-workout for long stretches of focus

Critical tasks still in the backlog should be moved to the sprint with
the task.move tool once I agree.`), nil
		})

	srv.Prompt("weekly_review").
		Description("Review the week: finished work, stuck tasks, initiative and goal progress.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Weekly Review Session", `Let's review my week. Please:

1. Read the board from grim://board
2. Read initiative progress from grim://initiatives
3. Read the goal grid from grim://goals
4. Read the week plan from grim://plan/week

Help me answer:

**Done:** what reached the done column, and which initiatives moved?

**Stuck:** which tasks sat in progress all week, and what blocks them?

**Next week:** which backlog tasks should enter the sprint, and does
any goal need its progress updated with the goal.progress tool?

Keep the sprint to what fits in next week's deep work blocks.`), nil
		})

	srv.Prompt("task_breakdown").
		Description("Break down a large task into smaller tasks with estimates.").
		Argument("task_description", "Description of the task to break down", true).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			taskDesc := args["task_description"]
			if taskDesc == "" {
				taskDesc = "[Please describe the task you want to break down]"
			}
			return userPrompt("Task Breakdown Assistant", fmt.Sprintf(`Help me break down this task into smaller, actionable tasks:

**Task:** %s

Please:
1. Identify the main components
2. Split it into 3-7 tasks that each fit in one block
3. For each task suggest:
   - A clear, action-oriented title
   - An estimate such as "45 min" or "2h"
   - Priority (critical, high, medium, low)
   - The initiative it belongs to, if any
4. Suggest the order to work on them

Once I approve, create each task with the task.create tool in the backlog
column.`, taskDesc)), nil
		})

	srv.Prompt("goal_review").
		Description("Check that tasks on the board serve the goals in the grid.").
		Argument("horizon", "Goal horizon to focus on: yearly, monthly or weekly", false).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			horizon := args["horizon"]
			if horizon == "" {
				horizon = "yearly"
			}
			return userPrompt("Goal Review", fmt.Sprintf(`Review my %s goals. Please:

1. Read the goal grid from grim://goals
2. Read all tasks from grim://tasks

For each %s goal:
- List the tasks that move it forward
- Flag goals with no supporting task
- Suggest one concrete next task for each of those

Empty slots in the grid are fine; only suggest a new goal if I ask.`, horizon, horizon)), nil
		})

	return nil
}

func userPrompt(description, text string) *mcp.PromptResult {
	return &mcp.PromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		},
	}
}
