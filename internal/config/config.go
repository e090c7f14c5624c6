// Package config loads the shim's configuration file. Everything has a
// working default; the file only overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// HTTP configures the diagnostic HTTP server.
type HTTP struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Config is the shim configuration.
type Config struct {
	// SocketPath overrides the HMD service socket discovery.
	SocketPath string `yaml:"socket_path"`

	// DialTimeoutSeconds bounds each service request round-trip.
	DialTimeoutSeconds int `yaml:"dial_timeout_seconds"`

	// EnableHandTracking controls whether the runtime reports hand
	// tracking support to callers querying for it.
	EnableHandTracking bool `yaml:"enable_hand_tracking"`

	// LogLevel is a zerolog level name (trace, debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	HTTP HTTP `yaml:"http"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DialTimeoutSeconds: 5,
		EnableHandTracking: true,
		LogLevel:           "info",
		HTTP: HTTP{
			Host: "127.0.0.1", // Local-only by default.
			Port: 8383,
		},
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "pvrxr", "config.yaml"), nil
}

// Load reads the config at path; an empty path uses the standard
// location. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the shim cannot run with.
func (c Config) Validate() error {
	if c.DialTimeoutSeconds <= 0 {
		return fmt.Errorf("dial_timeout_seconds must be positive, got %d", c.DialTimeoutSeconds)
	}
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.HTTP.Port)
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// DialTimeout returns the configured timeout as a duration.
func (c Config) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutSeconds) * time.Second
}
