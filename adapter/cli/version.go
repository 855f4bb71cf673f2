package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/felixgeelhaar/grim/adapter/cli.Version=..."
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

func currentVersion() versionInfo {
	v := versionInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate}
	if info, ok := debug.ReadBuildInfo(); ok {
		v.GoVersion = info.GoVersion
	}
	return v
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := currentVersion()
		out := cmd.OutOrStdout()
		if JSONOutput() {
			return PrintJSON(out, v)
		}
		fmt.Fprintf(out, "grim %s (%s, built %s", v.Version, v.Commit, v.BuildDate)
		if v.GoVersion != "" {
			fmt.Fprintf(out, ", %s", v.GoVersion)
		}
		fmt.Fprintln(out, ")")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
