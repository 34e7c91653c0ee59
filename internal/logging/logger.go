// Package logging builds the service's *slog.Logger on top of zap.
package logging

import (
	"fmt"
	"io"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"

	"productinventory/internal/config"
)

// New returns a slog logger backed by a zap core along with its flush function.
// Format "json" uses the production encoder; "console" the development one.
func New(cfg config.LogConfig) (*slog.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}
	var zc zap.Config
	switch cfg.Format {
	case "", "json":
		zc = zap.NewProductionConfig()
	case "console":
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zl, err := zc.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build zap logger: %w", err)
	}
	return slog.New(zapslog.NewHandler(zl.Core())), zl.Sync, nil
}

// NewWriter returns a JSON slog logger writing to w at level. Used by tests
// that need to inspect log output.
func NewWriter(w io.Writer, level zapcore.Level) *slog.Logger {
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return slog.New(zapslog.NewHandler(core))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(zapslog.NewHandler(zapcore.NewNopCore()))
}
