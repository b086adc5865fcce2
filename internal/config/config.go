// Package config loads the harvest configuration from a TOML file
// and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/altum-labs/docharvest/internal/core/domain"
)

// Environment variables recognised on top of the config file. Both
// override the file value when set.
const (
	EnvToken   = "DOCHARVEST_TOKEN"
	EnvBaseURL = "DOCHARVEST_BASE_URL"
)

// Defaults applied where the file and the environment are silent.
const (
	DefaultPageSize  = 100
	DefaultChunkSize = 100
	DefaultCooldown  = time.Second
)

// Config holds everything a harvest run needs. Zero values mean "use
// the default"; only BaseURL and Token are mandatory.
type Config struct {
	// BaseURL is the root of the remote API, without the version
	// prefix, e.g. "https://api.example.com".
	BaseURL string `toml:"base_url"`

	// Token is the bearer token presented on every request.
	Token string `toml:"token"`

	// PageSize is the page_size sent on listing requests.
	PageSize int `toml:"page_size"`

	// ChunkSize caps how many fan-out requests run concurrently.
	ChunkSize int `toml:"chunk_size"`

	// CooldownSeconds is the pause between fan-out chunks.
	CooldownSeconds float64 `toml:"cooldown_seconds"`

	// RateLimit is the sustained request rate per second against the
	// remote API. Zero disables client-side rate limiting.
	RateLimit float64 `toml:"rate_limit"`

	// MetricsListen is the address the Prometheus endpoint binds to.
	// Empty disables the endpoint.
	MetricsListen string `toml:"metrics_listen"`
}

// DefaultPath returns the default config file location,
// ~/.docharvest/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".docharvest", "config.toml"), nil
}

// Load reads the config file at path, overlays the environment and
// fills in defaults. A missing file is not an error: the environment
// alone can carry a complete configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Fall through to the environment.
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if token := os.Getenv(EnvToken); token != "" {
		cfg.Token = token
	}
	if baseURL := os.Getenv(EnvBaseURL); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.CooldownSeconds <= 0 {
		c.CooldownSeconds = DefaultCooldown.Seconds()
	}
}

// Validate checks that the mandatory fields are present.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base_url is required", domain.ErrInvalidConfiguration)
	}
	if c.Token == "" {
		return fmt.Errorf("%w: token is required", domain.ErrInvalidConfiguration)
	}
	return nil
}

// Cooldown returns the fan-out cooldown as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds * float64(time.Second))
}
