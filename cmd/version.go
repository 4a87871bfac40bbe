package cmd

import (
	"fmt"
	"runtime"

	"github.com/egoavara/formguard/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "formguard %s (%s/%s)\n", version.Version, runtime.GOOS, runtime.GOARCH)
		if version.GitCommit != "" {
			fmt.Fprintf(out, "  commit: %s\n", version.GitCommit)
		}
		if version.BuildDate != "" {
			fmt.Fprintf(out, "  built:  %s\n", version.BuildDate)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
