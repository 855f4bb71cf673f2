package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/grim/pkg/observability"
)

var (
	jsonOutput bool
	verbose    bool
	logger     *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "grim",
	Short: "Grim - optimistic task board",
	Long: `Grim keeps a kanban board, a goal grid and a weekly day plan for one
signed-in user.

Every change is applied locally first and committed to the remote store
in the background, so commands return immediately.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ctx := observability.NewInvocationContext(cmd.Context(), cmd.CommandPath())
		timer := observability.StartTimer(cmd.CommandPath()).WithLogger(Logger())
		if a := GetApp(); a != nil && a.Metrics != nil {
			timer.WithMetrics(a.Metrics)
		}
		cmd.SetContext(observability.WithTimer(ctx, timer))
		Logger().DebugContext(ctx, "command start")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if timer := observability.TimerFromContext(cmd.Context()); timer != nil {
			timer.Stop(cmd.Context(), nil)
		}
	},
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// Root returns the root command.
func Root() *cobra.Command {
	return rootCmd
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// Logger returns the CLI logger.
func Logger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// Verbose reports whether --verbose was given.
func Verbose() bool {
	return verbose
}

// JSONOutput reports whether --json was given.
func JSONOutput() bool {
	return jsonOutput
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// Commit flushes the commit queue after a mutation and reports every
// commit the remote store rejected. The command itself has already
// succeeded locally, so failures are printed rather than returned.
func Commit(cmd *cobra.Command) error {
	a := GetApp()
	if a == nil {
		return ErrNotInitialized
	}
	failures, err := a.Flush(cmd.Context())
	if err != nil {
		return fmt.Errorf("commit queue not drained: %w", err)
	}
	for _, f := range failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: remote commit failed: %s\n", f)
	}
	return nil
}
