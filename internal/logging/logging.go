// Package logging builds the process zap logger and bridges it to the
// middleware logger interface.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/felixgeelhaar/mcp-adapters/internal/config"
	"github.com/felixgeelhaar/mcp-adapters/middleware"
)

// New builds a JSON logger writing to cfg.File, or to stderr when no file
// is set. Stdout is never used since the stdio transport owns it.
func New(cfg config.Log) (*zap.Logger, error) {
	if cfg.File == "" {
		return NewWithWriter(os.Stderr, cfg.Level), nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) // #nosec G304 -- path from flag
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", cfg.File, err)
	}
	return NewWithWriter(f, cfg.Level), nil
}

// NewWithWriter builds a JSON logger writing to w at the named level.
func NewWithWriter(w io.Writer, level string) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(w),
		ParseLevel(level),
	)
	return zap.New(core)
}

// ParseLevel maps debug, warn and error to their zap levels. Anything else
// is info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// Adapter exposes a zap logger as a middleware.Logger.
type Adapter struct {
	l *zap.Logger
}

var _ middleware.Logger = (*Adapter)(nil)

// NewAdapter wraps l.
func NewAdapter(l *zap.Logger) *Adapter {
	return &Adapter{l: OrNop(l)}
}

func (a *Adapter) Info(msg string, fields ...middleware.Field) {
	a.l.Info(msg, zapFields(fields)...)
}

func (a *Adapter) Error(msg string, fields ...middleware.Field) {
	a.l.Error(msg, zapFields(fields)...)
}

func (a *Adapter) Debug(msg string, fields ...middleware.Field) {
	a.l.Debug(msg, zapFields(fields)...)
}

func (a *Adapter) Warn(msg string, fields ...middleware.Field) {
	a.l.Warn(msg, zapFields(fields)...)
}

func zapFields(fields []middleware.Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = zap.Any(f.Key, f.Value)
	}
	return out
}
