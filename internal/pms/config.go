// Package pms provides the authenticated client for the external
// property-management system API.
package pms

import (
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for PMS API access.
type Config struct {
	// BaseURL is the PMS API base URL
	BaseURL string

	// TokenURL is the OAuth2 token endpoint. Defaults to BaseURL + "/oauth2/token".
	TokenURL string

	// ClientID and ClientSecret are the client-credentials grant credentials
	ClientID     string
	ClientSecret string

	// Timeout for API requests
	Timeout time.Duration

	// MaxRetries is the number of retries after a rate-limited attempt
	MaxRetries int

	// InitialBackoff is the wait before the first retry; each further
	// retry doubles it
	InitialBackoff time.Duration
}

// DefaultConfig returns the default configuration, reading from environment variables.
func DefaultConfig() Config {
	cfg := Config{
		BaseURL:        getEnv("PMS_API_URL", "https://api.pms.example.com"),
		TokenURL:       os.Getenv("PMS_TOKEN_URL"),
		ClientID:       os.Getenv("PMS_CLIENT_ID"),
		ClientSecret:   os.Getenv("PMS_CLIENT_SECRET"),
		Timeout:        10 * time.Second,
		MaxRetries:     getEnvInt("PMS_MAX_RETRIES", 3),
		InitialBackoff: time.Second,
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = cfg.BaseURL + "/oauth2/token"
	}
	return cfg
}

// HasCredentials reports whether client credentials are configured.
func (c Config) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// getEnv returns an environment variable value or a default if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
