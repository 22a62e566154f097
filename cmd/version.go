package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maddielabs/maddie/internal/config"
)

// Version information (injected at build time via ldflags)
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVersion()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion() error {
	fmt.Printf("Maddie %s\n", AppVersion)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Configuration: not loaded")
		fmt.Printf("  %v\n", err)
		return nil
	}

	fmt.Println("Configuration:")
	fmt.Printf("  Agent: %s\n", cfg.DoozerName)
	fmt.Printf("  Endpoint: %s\n", cfg.BaseURL)
	fmt.Printf("  Hub: %s  Agent ID: %s\n", cfg.HubID, cfg.AgentID)
	fmt.Printf("  State dir: %s\n", cfg.StateDir)

	if cfg.SubscriptionKey != "" {
		fmt.Println("  Subscription key: configured")
	} else {
		fmt.Println("  Subscription key: not set (MADDIE_SUBSCRIPTION_KEY)")
	}
	if cfg.APIKey != "" {
		fmt.Println("  API key: configured")
	} else {
		fmt.Println("  API key: not set (MADDIE_API_KEY)")
	}

	return nil
}
