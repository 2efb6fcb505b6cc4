// Package cli implements the whiskerctl maintenance commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "whiskerctl",
	Short: "Maintenance tool for the Daily Whisker backend",
	Long: `whiskerctl manages Daily Whisker data outside the API server.

It reads the same environment (.env, FIREBASE_*, REDIS_*) as the server.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(seedCatsCmd)
	rootCmd.AddCommand(versionCmd)
}
