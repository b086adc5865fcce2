package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altum-labs/docharvest/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
base_url = "https://api.example.com"
token = "secret"
page_size = 50
chunk_size = 10
cooldown_seconds = 2.5
metrics_listen = ":9310"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, 10, cfg.ChunkSize)
	assert.Equal(t, 2500*time.Millisecond, cfg.Cooldown())
	assert.Equal(t, ":9310", cfg.MetricsListen)
}

func TestLoad_MissingFileUsesEnvironment(t *testing.T) {
	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvBaseURL, "https://env.example.com")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "env-token", cfg.Token)
	assert.Equal(t, "https://env.example.com", cfg.BaseURL)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
base_url = "https://file.example.com"
token = "file-token"
`)
	t.Setenv(EnvToken, "env-token")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Token)
	assert.Equal(t, "https://file.example.com", cfg.BaseURL)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
base_url = "https://api.example.com"
token = "secret"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, DefaultChunkSize, cfg.ChunkSize)
	assert.Equal(t, DefaultCooldown, cfg.Cooldown())
	assert.Empty(t, cfg.MetricsListen)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, `base_url = [not toml`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_RequiresBaseURLAndToken(t *testing.T) {
	cfg := &Config{Token: "secret"}
	assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidConfiguration)

	cfg = &Config{BaseURL: "https://api.example.com"}
	assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidConfiguration)

	cfg = &Config{BaseURL: "https://api.example.com", Token: "secret"}
	assert.NoError(t, cfg.Validate())
}
