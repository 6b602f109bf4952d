// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "github-liveness",
	Short: "A CLI tool to check whether GitHub repositories are actively maintained.",
	Long: `github-liveness queries the GitHub API for a repository's activity signals
(commits, contributors, open pull requests and issues, latest release),
scores them into an alive/dead verdict, and can diff the result against a
previously stored snapshot.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). Fatal errors are printed with
// their causal chain before exiting non-zero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
			fmt.Fprintf(os.Stderr, "  Caused by: %v\n", cause)
		}
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
