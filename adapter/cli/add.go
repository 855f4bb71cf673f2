package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/grim/internal/productivity/application/commands"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
)

var addColumn string

var addCmd = &cobra.Command{
	Use:   "add <description>",
	Short: "Quick add a task with natural language",
	Long: `Quickly add a task using natural language.

The command parses your input to extract:
- Task title (required)
- Due date: today, tomorrow, next week, monday-sunday, or YYYY-MM-DD
- Priority: critical, high, medium, low (or !, !!, !!!)
- Estimate: 30min, 1h, 2 hours, etc.

Examples:
  grim add "Fix login redirect bug !!!"
  grim add "Record podcast intro tomorrow 45min"
  grim add "Finish health score API by friday high priority"
  grim add "Plan member survey" --column sprint`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := SessionApp()
		if err != nil {
			return err
		}

		parsed := parseNaturalLanguage(strings.Join(args, " "), time.Now())
		if parsed.title == "" {
			return fmt.Errorf("nothing left for a title in %q", strings.Join(args, " "))
		}

		create := commands.CreateTaskCommand{
			Title:    parsed.title,
			Priority: parsed.priority,
			Estimate: parsed.estimate,
			Column:   addColumn,
		}
		if parsed.dueDate != nil {
			create.DueDate = parsed.dueDate.Format(task.DueDateLayout)
		}

		result, err := app.CreateTaskHandler.Handle(cmd.Context(), create)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		out := cmd.OutOrStdout()
		t := result.Task
		fmt.Fprintln(out, "Task created!")
		fmt.Fprintf(out, "  Title:    %s\n", t.Title)
		fmt.Fprintf(out, "  ID:       %s\n", t.ID)
		fmt.Fprintf(out, "  Priority: %s\n", t.Priority)
		fmt.Fprintf(out, "  Column:   %s\n", t.Column)
		if t.Estimate != "" {
			fmt.Fprintf(out, "  Estimate: %s\n", t.Estimate)
		}
		if t.DueDate != "" {
			fmt.Fprintf(out, "  Due:      %s\n", t.DueDate)
		}

		return Commit(cmd)
	},
}

type parsedInput struct {
	title    string
	priority string
	estimate string
	dueDate  *time.Time
}

func parseNaturalLanguage(input string, now time.Time) parsedInput {
	result := parsedInput{
		title: input,
	}

	result.priority, result.title = extractPriority(result.title)

	var duration time.Duration
	duration, result.title = extractDuration(result.title)
	if duration > 0 {
		result.estimate = formatEstimate(duration)
	}

	result.dueDate, result.title = extractDueDate(result.title, now)
	result.title = cleanTitle(result.title)

	return result
}

// priorityKeywords is checked in order so that "high priority" wins over "high".
var priorityKeywords = []struct {
	keyword  string
	priority string
}{
	{"critical priority", "critical"},
	{"urgent priority", "critical"},
	{"high priority", "high"},
	{"medium priority", "medium"},
	{"low priority", "low"},
	{"critical", "critical"},
	{"urgent", "critical"},
	{"high", "high"},
	{"low", "low"},
}

func extractPriority(input string) (string, string) {
	if strings.Contains(input, "!!!") {
		return "critical", strings.ReplaceAll(input, "!!!", "")
	}
	if strings.Contains(input, "!!") {
		return "high", strings.ReplaceAll(input, "!!", "")
	}
	if strings.Contains(input, "!") {
		return "medium", strings.ReplaceAll(input, "!", "")
	}

	for _, p := range priorityKeywords {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p.keyword) + `\b`)
		if re.MatchString(input) {
			return p.priority, re.ReplaceAllString(input, "")
		}
	}

	return "", input
}

var durationPatterns = []struct {
	regex      *regexp.Regexp
	multiplier time.Duration
}{
	{regexp.MustCompile(`(?i)(?:for\s+)?(\d+(?:\.\d+)?)\s*h(?:ours?)?\b`), time.Hour},
	{regexp.MustCompile(`(?i)(?:for\s+)?(\d+)\s*min(?:utes?)?\b`), time.Minute},
}

func extractDuration(input string) (time.Duration, string) {
	for _, p := range durationPatterns {
		if matches := p.regex.FindStringSubmatch(input); len(matches) > 1 {
			if val, err := strconv.ParseFloat(matches[1], 64); err == nil {
				return time.Duration(val * float64(p.multiplier)), p.regex.ReplaceAllString(input, "")
			}
		}
	}
	return 0, input
}

// formatEstimate renders d the way estimates are shown on the board.
func formatEstimate(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%d min", int(d.Minutes()))
}

var weekdayNames = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

var isoDatePattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)

func extractDueDate(input string, now time.Time) (*time.Time, string) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	relative := []struct {
		keyword string
		date    time.Time
	}{
		{"next week", today.AddDate(0, 0, 7)},
		{"tomorrow", today.AddDate(0, 0, 1)},
		{"today", today},
	}
	for _, r := range relative {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(r.keyword) + `\b`)
		if re.MatchString(input) {
			d := r.date
			return &d, re.ReplaceAllString(input, "")
		}
	}

	for _, wd := range weekdayNames {
		re := regexp.MustCompile(`(?i)(?:\b(?:by|next)\s+)?\b` + wd.name + `\b`)
		if re.MatchString(input) {
			date := nextWeekday(today, wd.day)
			return &date, re.ReplaceAllString(input, "")
		}
	}

	if matches := isoDatePattern.FindStringSubmatch(input); len(matches) > 1 {
		if date, err := time.Parse(task.DueDateLayout, matches[1]); err == nil {
			return &date, isoDatePattern.ReplaceAllString(input, "")
		}
	}

	return nil, input
}

func nextWeekday(from time.Time, target time.Weekday) time.Time {
	daysUntil := int(target) - int(from.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return from.AddDate(0, 0, daysUntil)
}

var (
	spaceRun     = regexp.MustCompile(`\s+`)
	leadingFill  = regexp.MustCompile(`(?i)^\s*(?:by|for|at|on)\s+`)
	trailingFill = regexp.MustCompile(`(?i)\s+(?:by|for|at|on)\s*$`)
)

func cleanTitle(title string) string {
	title = spaceRun.ReplaceAllString(title, " ")
	title = leadingFill.ReplaceAllString(title, "")
	title = trailingFill.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

func init() {
	addCmd.Flags().StringVar(&addColumn, "column", "", "column to add to (default backlog)")
	rootCmd.AddCommand(addCmd)
}
