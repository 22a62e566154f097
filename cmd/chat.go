package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/maddielabs/maddie/internal/config"
	"github.com/maddielabs/maddie/internal/conversation"
	"github.com/maddielabs/maddie/internal/doozer"
	"github.com/maddielabs/maddie/internal/log"
	"github.com/maddielabs/maddie/internal/ratelimit"
	"github.com/maddielabs/maddie/internal/session"
	"github.com/maddielabs/maddie/internal/storage"
	"github.com/maddielabs/maddie/internal/tui"
	"github.com/maddielabs/maddie/internal/widget"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat widget",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := log.New(log.Config{
		Level: parseLogLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.NewFileStore(cfg.StateDir, logger)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}

	client, err := doozer.New(doozer.Config{
		BaseURL:         cfg.BaseURL,
		SubscriptionKey: cfg.SubscriptionKey,
		APIKey:          cfg.APIKey,
		DoozerName:      cfg.DoozerName,
		HubID:           cfg.HubID,
		AgentID:         cfg.AgentID,
	}, logger,
		// Smooth outbound traffic below the hard window enforced by the
		// persisted limiter, so the agent API never sees a burst.
		doozer.WithRateLimiter(rate.NewLimiter(rate.Limit(float64(ratelimit.MaxRequests)/ratelimit.Window.Seconds()), ratelimit.MaxRequests)),
	)
	if err != nil {
		return fmt.Errorf("failed to create agent client: %w", err)
	}

	w, err := widget.New(
		conversation.NewLog(store, logger),
		session.NewManager(store, logger),
		ratelimit.NewLimiter(store, logger),
		client,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create widget: %w", err)
	}

	if err := tui.Run(ctx, w, cfg.AssistantName); err != nil {
		return fmt.Errorf("TUI exited: %w", err)
	}
	return nil
}

// parseLogLevel maps the configured level string to a slog level.
// Unknown values fall back to info.
func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
