package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsWhenDefaultFileMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `server:
  port: 9191
  shutdown_timeout: 3s
log:
  level: debug
  format: console
estimator:
  min_items: 20
  max_standard_error: 0.25
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 20, cfg.Estimator.MinItems)
	assert.Equal(t, 0.25, cfg.Estimator.MaxStandardError)
	// Untouched policy fields keep their defaults.
	assert.Equal(t, 5, cfg.Estimator.WarmupItems)
	assert.Equal(t, 1e-3, cfg.Estimator.Tolerance)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9191\n")
	t.Setenv("IRTCAT_SERVER_PORT", "7000")
	t.Setenv("IRTCAT_STORE_DSN", "postgres://cat@localhost/cat")
	t.Setenv("IRTCAT_ESTIMATOR_MAX_STANDARD_ERROR", "0.2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "postgres://cat@localhost/cat", cfg.Store.DSN)
	assert.Equal(t, 0.2, cfg.Estimator.MaxStandardError)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad port", "server:\n  port: 70000\n", "server.port"},
		{"bad log format", "log:\n  format: xml\n", "log format"},
		{"inverted theta bounds", "estimator:\n  theta_min: 5\n", "estimator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_RejectsOversizedFile(t *testing.T) {
	path := writeConfig(t, "# "+strings.Repeat("x", maxConfigFileSize)+"\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "limit")
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"IRTCAT_SERVER_PORT":                  "server.port",
		"IRTCAT_SERVER_SHUTDOWN_TIMEOUT":      "server.shutdown_timeout",
		"IRTCAT_ESTIMATOR_MAX_STANDARD_ERROR": "estimator.max_standard_error",
		"IRTCAT_LOG_LEVEL":                    "log.level",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestServerAddr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:80", ServerConfig{Host: "0.0.0.0", Port: 80}.Addr())
}
