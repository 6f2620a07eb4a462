package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var (
	githubToken string
	jsonOutput  bool
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "council-cli",
	Short: "council-cli runs the Code Council review pipeline from the command line.",
	Long: `A CLI for running Code Council reviews without the webhook service:
review a GitHub pull request, a local commit range, or replay a set of
candidate annotations through consolidation.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		// Keep stdout for the report.
		if _, ok := os.LookupEnv("CC_LOGGING_OUTPUT"); !ok {
			_ = os.Setenv("CC_LOGGING_OUTPUT", "stderr")
		}
	},
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	rootCmd.PersistentFlags().StringVarP(&githubToken, "github-token", "t", "", "GitHub token (overrides CC_GITHUB_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output with timing information")
}
