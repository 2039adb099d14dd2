// Package logging builds the zap logger used across anchorboard.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ha1tch/anchorboard/pkg/config"
)

// New returns a logger for cfg. Mode "off" yields a no-op logger. When File
// is set, output goes there instead of stderr; the terminal editor relies on
// this to keep log lines off the screen.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	switch cfg.Mode {
	case "", "off":
		return zap.NewNop(), nil
	case "production":
		zc = zap.NewProductionConfig()
	default:
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	if cfg.File != "" {
		zc.OutputPaths = []string{cfg.File}
		zc.ErrorOutputPaths = []string{cfg.File}
	}
	return zc.Build()
}
