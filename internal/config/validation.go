package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for completeness and sanity.
// Fail-fast: called by Load before the config reaches any component.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if err := c.validateBaseURL(); err != nil {
		return err
	}
	if strings.TrimSpace(c.SubscriptionKey) == "" {
		return fmt.Errorf("%w: set MADDIE_SUBSCRIPTION_KEY or subscription_key in config.yaml", ErrMissingSubscriptionKey)
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: set MADDIE_API_KEY or api_key in config.yaml", ErrMissingAPIKey)
	}
	if strings.TrimSpace(c.DoozerName) == "" {
		return ErrMissingDoozerName
	}

	return nil
}

func (c *Config) validateBaseURL() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("%w: base URL is empty", ErrInvalidBaseURL)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q (only http/https allowed)", ErrInvalidBaseURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidBaseURL)
	}

	return nil
}
