package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppName names the per-user data directory.
const AppName = "designstore"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Storage
	DataDir          string `envconfig:"DATA_DIR"` // empty → <user config dir>/designstore
	DefaultProjectID string `envconfig:"DEFAULT_PROJECT_ID" default:"default"`
	CacheSize        int    `envconfig:"CACHE_SIZE" default:"256"`

	// Temp file sweeper
	CleanupInterval time.Duration `envconfig:"CLEANUP_INTERVAL" default:"1h"`
	TempMaxAge      time.Duration `envconfig:"TEMP_MAX_AGE" default:"1h"`

	// HTTP API
	ListenAddr  string `envconfig:"HTTP_LISTEN_ADDR" default:"127.0.0.1:8787"`
	AuthMode    string `envconfig:"AUTH_MODE" default:"none"` // "none" or "api-key"
	APIKey      string `envconfig:"API_KEY"`
	CORSOrigins string `envconfig:"CORS_ORIGINS"`
}

// BaseDir returns the storage root: DataDir if set, otherwise the
// per-user application data directory.
func (c *Config) BaseDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// AuthEnabled returns true if requests must carry the API key.
func (c *Config) AuthEnabled() bool {
	return strings.EqualFold(c.AuthMode, "api-key")
}

// Validate checks combinations envconfig cannot express.
func (c *Config) Validate() error {
	switch strings.ToLower(c.AuthMode) {
	case "none":
	case "api-key":
		if c.APIKey == "" {
			return fmt.Errorf("AUTH_MODE=api-key requires API_KEY")
		}
	default:
		return fmt.Errorf("invalid AUTH_MODE %q, expected none or api-key", c.AuthMode)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("CACHE_SIZE must be >= 0, got %d", c.CacheSize)
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return LoadWithPrefix("")
}

// LoadWithPrefix reads configuration with a prefix.
func LoadWithPrefix(prefix string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("loading config with prefix %s: %w", prefix, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}
