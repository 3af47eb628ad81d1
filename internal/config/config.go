// Package config loads and validates watcher configuration. Settings come
// from, in increasing precedence: built-in defaults, an optional YAML
// config file, environment variables (a .env file is honored), and command
// line flags.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds watcher configuration.
type Config struct {
	// Log source
	LogPath string

	// Notification settings. An empty WebhookURL disables delivery; every
	// alert is then suppressed and logged.
	WebhookURL string

	// Detection settings
	ErrorRateThreshold float64
	WindowSize         int
	AlertCooldown      time.Duration
	MaintenanceMode    bool

	// Operational settings
	ListenAddr string // ops HTTP server; empty disables it
	LogLevel   string
	LogFormat  string // "console" or "json"
}

// DefaultConfig returns default configuration, matching the watcher's
// historical environment defaults.
func DefaultConfig() Config {
	return Config{
		LogPath:            "/var/log/nginx/access.log",
		ErrorRateThreshold: 2.0,
		WindowSize:         200,
		AlertCooldown:      300 * time.Second,
		MaintenanceMode:    false,
		ListenAddr:         ":9600",
		LogLevel:           "info",
		LogFormat:          "console",
	}
}

// Validate checks if configuration is valid. Malformed settings are startup
// errors, not silent defaults.
func (c *Config) Validate() error {
	if c.LogPath == "" {
		return fmt.Errorf("log path is required")
	}

	if c.ErrorRateThreshold < 0 {
		return fmt.Errorf("error rate threshold must be >= 0, got %v", c.ErrorRateThreshold)
	}

	if c.AlertCooldown < 0 {
		return fmt.Errorf("alert cooldown must be >= 0, got %v", c.AlertCooldown)
	}

	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("log format must be 'console' or 'json', got %q", c.LogFormat)
	}

	return nil
}

// Environment variable names. SLACK_WEBHOOK_URL keeps its historical name;
// the channel is any webhook accepting {"text": ...}.
const (
	EnvLogPath         = "LOG_PATH"
	EnvWebhookURL      = "SLACK_WEBHOOK_URL"
	EnvThreshold       = "ERROR_RATE_THRESHOLD"
	EnvWindowSize      = "WINDOW_SIZE"
	EnvCooldownSec     = "ALERT_COOLDOWN_SEC"
	EnvMaintenanceMode = "MAINTENANCE_MODE"
	EnvListenAddr      = "HTTP_LISTEN_ADDR"
)

// ApplyEnv overlays environment variables onto c. Unset variables leave the
// current value; malformed values are errors.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvLogPath); ok {
		c.LogPath = v
	}

	if v, ok := os.LookupEnv(EnvWebhookURL); ok {
		c.WebhookURL = v
	}

	if v, ok := os.LookupEnv(EnvThreshold); ok {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid float %q", EnvThreshold, v)
		}
		c.ErrorRateThreshold = threshold
	}

	if v, ok := os.LookupEnv(EnvWindowSize); ok {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", EnvWindowSize, v)
		}
		c.WindowSize = size
	}

	if v, ok := os.LookupEnv(EnvCooldownSec); ok {
		sec, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", EnvCooldownSec, v)
		}
		c.AlertCooldown = time.Duration(sec) * time.Second
	}

	if v, ok := os.LookupEnv(EnvMaintenanceMode); ok {
		mode, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaintenanceMode, err)
		}
		c.MaintenanceMode = mode
	}

	if v, ok := os.LookupEnv(EnvListenAddr); ok {
		c.ListenAddr = v
	}

	return nil
}

// parseBool accepts the historical truthy spellings (true/yes/1) plus their
// negations.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}
