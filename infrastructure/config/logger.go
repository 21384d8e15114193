package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the production or development zap logger with a level
// that can be changed at runtime through the returned AtomicLevel.
func NewLogger(cfg *Config) (*zap.Logger, zap.AtomicLevel, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.LogLevel))

	logger, err := zcfg.Build()
	if err != nil {
		return nil, zcfg.Level, err
	}
	return logger.With(zap.String("environment", cfg.Environment)), zcfg.Level, nil
}

// ParseLevel maps a level name to zap, falling back to info
func ParseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}
