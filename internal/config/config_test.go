package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.APITimeout())
	assert.Contains(t, cfg.Storage.Path, ".pearldata")
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "8080", cfg.Stub.Port)
	assert.Equal(t, 12*time.Hour, cfg.StubTokenExpiration())
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api:
  base_url: https://pearl.example.edu/api
  timeout: 30s
storage:
  path: /var/lib/pearl/session.json
logging:
  level: debug
  format: json
stub:
  port: "9090"
  token_expiration: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://pearl.example.edu/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.APITimeout())
	assert.Equal(t, "/var/lib/pearl/session.json", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "9090", cfg.Stub.Port)
	assert.Equal(t, time.Hour, cfg.StubTokenExpiration())
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: https://file.example/api\n"), 0o600))

	t.Setenv("PEARL_API_BASE_URL", "https://env.example/api")
	t.Setenv("PEARL_LOG_LEVEL", "warn")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example/api", cfg.API.BaseURL)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadConfigRejectsBadTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  timeout: soon\n"), 0o600))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}
