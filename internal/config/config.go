// Package config loads the mindmap configuration file.
//
// Config file locations (priority order):
//  1. $MINDMAP_CONFIG
//  2. ./mindmap.yaml
//  3. $XDG_CONFIG_HOME/mindmap/config.yaml
//  4. ~/.config/mindmap/config.yaml
//  5. /etc/mindmap/config.yaml
//
// Values missing from the file fall back to DefaultConfig.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"mindmap/internal/command"
	"mindmap/internal/history"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(15 * time.Second)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(60 * time.Second)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.Server.SessionTTL == 0 {
		c.Server.SessionTTL = Duration(30 * time.Minute)
	}

	if c.Database.Path == "" {
		c.Database.Path = "./mindmap.db"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = LogFormatConsole
	}

	if c.Editor.HistoryDepth == 0 {
		c.Editor.HistoryDepth = history.DefaultMaxDepth
	}
	d := command.DefaultOptions()
	if c.Editor.ChildOffset == (Offset{}) {
		c.Editor.ChildOffset = Offset{X: d.ChildOffset.X, Y: d.ChildOffset.Y}
	}
	if c.Editor.SiblingOffsetY == 0 {
		c.Editor.SiblingOffsetY = d.SiblingOffsetY
	}
	if c.Editor.ParentOffsetX == 0 {
		c.Editor.ParentOffsetX = d.ParentOffsetX
	}
	if c.Editor.PasteOffset == (Offset{}) {
		c.Editor.PasteOffset = Offset{X: d.PasteOffset.X, Y: d.PasteOffset.Y}
	}

	if c.Client.BaseURL == "" {
		c.Client.BaseURL = "http://localhost:3000"
	}
	if c.Client.Timeout == 0 {
		c.Client.Timeout = Duration(10 * time.Second)
	}
	b := &c.Client.Breaker
	if b.MaxRequests == 0 {
		b.MaxRequests = 5
	}
	if b.Interval == 0 {
		b.Interval = Duration(30 * time.Second)
	}
	if b.OpenTimeout == 0 {
		b.OpenTimeout = Duration(60 * time.Second)
	}
	if b.FailureThreshold == 0 {
		b.FailureThreshold = 0.8
	}
	if b.MinRequests == 0 {
		b.MinRequests = 5
	}
}

// Validate reports settings that cannot be used
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if c.Editor.HistoryDepth < 0 {
		return fmt.Errorf("editor.history_depth: must not be negative")
	}
	if t := c.Client.Breaker.FailureThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("client.breaker.failure_threshold: %v is outside (0, 1]", t)
	}
	return nil
}
