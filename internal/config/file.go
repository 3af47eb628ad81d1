package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML config file shape. Durations are strings like "300s" or
// "5m". Pointer fields distinguish "absent" from zero values so the file
// only overrides what it sets.
type File struct {
	LogPath            *string  `yaml:"logPath,omitempty"`
	WebhookURL         *string  `yaml:"webhookURL,omitempty"`
	ErrorRateThreshold *float64 `yaml:"errorRateThreshold,omitempty"`
	WindowSize         *int     `yaml:"windowSize,omitempty"`
	AlertCooldown      *string  `yaml:"alertCooldown,omitempty"`
	MaintenanceMode    *bool    `yaml:"maintenanceMode,omitempty"`
	ListenAddr         *string  `yaml:"listenAddr,omitempty"`
	LogLevel           *string  `yaml:"logLevel,omitempty"`
	LogFormat          *string  `yaml:"logFormat,omitempty"`
}

// LoadFile parses a YAML config file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &f, nil
}

// ApplyFile overlays the file's settings onto c.
func (c *Config) ApplyFile(f *File) error {
	if f.LogPath != nil {
		c.LogPath = *f.LogPath
	}
	if f.WebhookURL != nil {
		c.WebhookURL = *f.WebhookURL
	}
	if f.ErrorRateThreshold != nil {
		c.ErrorRateThreshold = *f.ErrorRateThreshold
	}
	if f.WindowSize != nil {
		c.WindowSize = *f.WindowSize
	}
	if f.AlertCooldown != nil {
		d, err := ParseDuration(*f.AlertCooldown)
		if err != nil {
			return fmt.Errorf("alertCooldown: %w", err)
		}
		c.AlertCooldown = d
	}
	if f.MaintenanceMode != nil {
		c.MaintenanceMode = *f.MaintenanceMode
	}
	if f.ListenAddr != nil {
		c.ListenAddr = *f.ListenAddr
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.LogFormat != nil {
		c.LogFormat = *f.LogFormat
	}
	return nil
}
