package config

import (
	"time"

	"mindmap/internal/command"
	"mindmap/internal/domain"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Editor   EditorConfig   `yaml:"editor"`
	Client   ClientConfig   `yaml:"client"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout,omitempty"` // zero keeps SSE streams open
	IdleTimeout     Duration `yaml:"idle_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string `yaml:"cors_origins"`
	SessionTTL      Duration `yaml:"session_ttl"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// Log formats
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// EditorConfig tunes the editor core
type EditorConfig struct {
	HistoryDepth   int     `yaml:"history_depth"`
	ChildOffset    Offset  `yaml:"child_offset"`
	SiblingOffsetY float64 `yaml:"sibling_offset_y"`
	ParentOffsetX  float64 `yaml:"parent_offset_x"`
	PasteOffset    Offset  `yaml:"paste_offset"`
}

// Offset is a canvas displacement
type Offset struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// CommandOptions converts the placement settings for the command layer
func (e EditorConfig) CommandOptions() command.Options {
	return command.Options{
		ChildOffset:    domain.Position{X: e.ChildOffset.X, Y: e.ChildOffset.Y},
		SiblingOffsetY: e.SiblingOffsetY,
		ParentOffsetX:  e.ParentOffsetX,
		PasteOffset:    domain.Position{X: e.PasteOffset.X, Y: e.PasteOffset.Y},
	}
}

// ClientConfig configures the CLI's connection to a running server
type ClientConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout Duration      `yaml:"timeout"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig configures the client's circuit breaker. OpenTimeout is how
// long the breaker stays open before letting MaxRequests probes through.
type BreakerConfig struct {
	MaxRequests      uint32   `yaml:"max_requests"`
	Interval         Duration `yaml:"interval"`
	OpenTimeout      Duration `yaml:"open_timeout"`
	FailureThreshold float64  `yaml:"failure_threshold"`
	MinRequests      uint32   `yaml:"min_requests"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
