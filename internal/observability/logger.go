// Package observability builds the process logger and the prometheus
// collector.
package observability

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mindmap/internal/config"
)

// Logger is a zap logger whose level can be changed while running
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
}

// NewLogger builds a logger writing to stderr
func NewLogger(cfg config.LogConfig) (*Logger, error) {
	return NewLoggerTo(cfg, os.Stderr)
}

// NewLoggerTo builds a logger writing to w
func NewLoggerTo(cfg config.LogConfig, w io.Writer) (*Logger, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
	}

	core := zapcore.NewCore(encoder(cfg.Format), zapcore.Lock(zapcore.AddSync(w)), level)
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)).Named("mindmap")
	return &Logger{Logger: logger, level: level}, nil
}

func encoder(format string) zapcore.Encoder {
	if strings.EqualFold(format, config.LogFormatJSON) {
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(ec)
	}
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

// Level returns the current level
func (l *Logger) Level() zapcore.Level {
	return l.level.Level()
}

// SetLevel changes the level by name. Unknown names leave it unchanged.
func (l *Logger) SetLevel(name string) error {
	lvl, err := zapcore.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("log level %q: %w", name, err)
	}
	if lvl != l.level.Level() {
		l.Info("log level changed", zap.Stringer("from", l.level.Level()), zap.Stringer("to", lvl))
		l.level.SetLevel(lvl)
	}
	return nil
}
