package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maddielabs/maddie/internal/config"
	"github.com/maddielabs/maddie/internal/log"
	"github.com/maddielabs/maddie/internal/ratelimit"
	"github.com/maddielabs/maddie/internal/session"
	"github.com/maddielabs/maddie/internal/storage"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the stored session, conversation and rate-limit window",
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := log.New(log.Config{Level: parseLogLevel(cfg.LogLevel), JSON: cfg.LogJSON})

	store, err := storage.NewFileStore(cfg.StateDir, logger)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}

	// Session clearing also wipes the conversation tied to it.
	if err := session.NewManager(store, logger).Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if err := ratelimit.NewLimiter(store, logger).Reset(); err != nil {
		return fmt.Errorf("failed to reset rate limiter: %w", err)
	}

	fmt.Println("Local widget state cleared. The next chat starts a fresh session.")
	return nil
}
