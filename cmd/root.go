// Package cmd provides the CLI commands for maddie.
//
// Commands:
//   - chat: Interactive chat widget with Bubble Tea TUI (default)
//   - reset: Clear the stored session and rate-limit window
//   - version: Show version and configuration information
//
// All commands shut down gracefully via context cancellation on
// SIGINT/SIGTERM.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "maddie",
	Short: "Maddie - embeddable AI support chat in your terminal",
	Long: `Maddie is a terminal chat widget backed by a remote agent.
It keeps a persistent conversation, remembers your session across
restarts, and renders answers with citations and follow-up questions.

Running maddie with no arguments starts the chat widget.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

// Execute is the main entry point for the maddie CLI application.
func Execute() error {
	return rootCmd.Execute()
}
