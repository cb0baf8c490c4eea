package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	logLevel string
	verbose  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "intel",
	Short: "Client intelligence briefings",
	Long: `Client intelligence briefing service.

Builds company briefings from a live quote, a cascaded news search
and an optional AI narrative.

Usage:
  go run ./cmd/intel [command]

Examples:
  go run ./cmd/intel api
  go run ./cmd/intel brief MSFT --company Microsoft
  go run ./cmd/intel ticker "Microsoft"
  go run ./cmd/intel check`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}
