package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pvrxr/pvrxr/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.Equal(t, 5*time.Second, cfg.DialTimeout())
	require.True(t, cfg.EnableHandTracking)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "127.0.0.1", cfg.HTTP.Host)
	require.Equal(t, 8383, cfg.HTTP.Port)
	require.Empty(t, cfg.SocketPath)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
socket_path: /tmp/pvr-test.sock
dial_timeout_seconds: 2
enable_hand_tracking: false
log_level: debug
http:
  host: 0.0.0.0
  port: 9000
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/pvr-test.sock", cfg.SocketPath)
	require.Equal(t, 2*time.Second, cfg.DialTimeout())
	require.False(t, cfg.EnableHandTracking)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	require.Equal(t, 9000, cfg.HTTP.Port)
}

func TestLoad_PartialOverrideKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "log_level: warn\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, 5*time.Second, cfg.DialTimeout())
	require.Equal(t, 8383, cfg.HTTP.Port)
}

func TestLoad_Malformed(t *testing.T) {
	path := writeConfig(t, "log_level: [oops\n")

	_, err := config.Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse config")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero timeout", func(c *config.Config) { c.DialTimeoutSeconds = 0 }},
		{"negative timeout", func(c *config.Config) { c.DialTimeoutSeconds = -1 }},
		{"port too low", func(c *config.Config) { c.HTTP.Port = 0 }},
		{"port too high", func(c *config.Config) { c.HTTP.Port = 70000 }},
		{"bad level", func(c *config.Config) { c.LogLevel = "loud" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
