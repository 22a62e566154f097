// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (MADDIE_* runtime override)
//  2. Config file (~/.maddie/config.yaml)
//  3. Default values
//
// Security: credentials (subscription key, API key) are never logged and
// are masked in MarshalJSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Sentinel errors for configuration validation.
var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingSubscriptionKey indicates the hub subscription key is not set.
	ErrMissingSubscriptionKey = errors.New("missing subscription key")

	// ErrMissingAPIKey indicates the agent API key is not set.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidBaseURL indicates the agent base URL is empty or malformed.
	ErrInvalidBaseURL = errors.New("invalid base URL")

	// ErrMissingDoozerName indicates the doozer name is not set.
	ErrMissingDoozerName = errors.New("missing doozer name")
)

// Defaults for the agent hub connection. Hub and agent identifiers match
// the deployment the widget ships against; both can be overridden per
// environment.
const (
	DefaultBaseURL = "https://api.doozerai.com"
	DefaultHubID   = "581898583"
	DefaultAgentID = "42910897"
	DefaultDoozer  = "maddie"

	// DefaultAssistantName is the display name shown in the widget header.
	DefaultAssistantName = "Maddie"
)

const configDirName = ".maddie"

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON. When
// adding new secrets, update MarshalJSON.
type Config struct {
	// Agent hub connection
	BaseURL         string `mapstructure:"base_url" json:"base_url"`
	SubscriptionKey string `mapstructure:"subscription_key" json:"subscription_key"` // SENSITIVE: masked in MarshalJSON
	APIKey          string `mapstructure:"api_key" json:"api_key"`                   // SENSITIVE: masked in MarshalJSON
	DoozerName      string `mapstructure:"doozer_name" json:"doozer_name"`
	HubID           string `mapstructure:"hub_id" json:"hub_id"`
	AgentID         string `mapstructure:"agent_id" json:"agent_id"`

	// Widget presentation
	AssistantName string `mapstructure:"assistant_name" json:"assistant_name"`

	// StateDir holds the persisted widget state (conversation, session,
	// rate-limit window). Defaults to ~/.maddie.
	StateDir string `mapstructure:"state_dir" json:"state_dir"`

	// Logging
	LogLevel string `mapstructure:"log_level" json:"log_level"` // debug/info/warn/error
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, configDirName)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v, configDir)

	v.SetEnvPrefix("MADDIE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults and env apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("doozer_name", DefaultDoozer)
	v.SetDefault("hub_id", DefaultHubID)
	v.SetDefault("agent_id", DefaultAgentID)
	v.SetDefault("assistant_name", DefaultAssistantName)
	v.SetDefault("state_dir", configDir)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// MarshalJSON masks sensitive fields so a dumped config never leaks
// credentials.
func (c *Config) MarshalJSON() ([]byte, error) {
	type alias Config // avoid recursion
	masked := alias(*c)
	if masked.SubscriptionKey != "" {
		masked.SubscriptionKey = "***"
	}
	if masked.APIKey != "" {
		masked.APIKey = "***"
	}
	return json.Marshal(masked)
}
