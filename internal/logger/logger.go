// Package logger builds the zap logger shared by the CLI and the servers.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every entry.
const ServiceName = "sheet-ingest"

// Config holds logger configuration options.
type Config struct {
	Level            string
	Encoding         string
	OutputPaths      []string
	ErrorOutputPaths []string
	// Fields are added to every entry, next to the service name.
	Fields map[string]string
}

func New(level string) (*zap.Logger, error) {
	return NewWithConfig(Config{Level: level})
}

func NewWithConfig(cfg Config) (*zap.Logger, error) {
	loggerConfig := zap.NewProductionConfig()

	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if err := loggerConfig.Level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	if cfg.Encoding != "" {
		loggerConfig.Encoding = cfg.Encoding
	}
	if len(cfg.OutputPaths) > 0 {
		loggerConfig.OutputPaths = cfg.OutputPaths
	}
	if len(cfg.ErrorOutputPaths) > 0 {
		loggerConfig.ErrorOutputPaths = cfg.ErrorOutputPaths
	}

	// Console mode is for people running the CLI by hand.
	if cfg.Encoding == "console" {
		loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		loggerConfig.DisableStacktrace = true
	}

	loggerConfig.InitialFields = map[string]any{"service": ServiceName}
	for k, v := range cfg.Fields {
		loggerConfig.InitialFields[k] = v
	}

	return loggerConfig.Build()
}
