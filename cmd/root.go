// Package cmd provides the command-line interface for patchpilot.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "patchpilot",
	Short: "patchpilot turns bug tickets into reviewable pull requests",
	Long: `patchpilot receives issue-tracker tickets describing bugs, retrieves
relevant source context from GitHub, asks a generative model for a fix, and
opens a draft pull request with the result - gated by a safety guard and
followed by CI monitoring.

Run it as a webhook server ('patchpilot serve') or process a single ticket
from the command line ('patchpilot fix').`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
