// Package cli implements the cattime command-line interface using
// Cobra. Each subcommand maps to an engine operation (serve, seed,
// rollover, digest, profile).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cattime",
	Short: "cattime — attendance and progression engine",
	Long: `cattime tracks attendance sessions at organizations and turns them
into experience, achievements and seasonal ranks. It serves a Telegram
bot, an HTTP API and the daily housekeeping jobs from one binary.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
