// Package logger constructs the structured logger every other package
// takes as a dependency rather than building its own.
package logger

import (
	"go.uber.org/zap"
)

// New builds a production zap logger tagged with the given service name,
// returning the sugared variant every other package in this module logs
// through.
func New(service string) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true

	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return log.Sugar().With("service", service), nil
}

// NewDevelopment builds a human-readable, colorized logger suited to
// running the server/client binaries interactively.
func NewDevelopment(service string) (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zap.CapitalColorLevelEncoder

	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return log.Sugar().With("service", service), nil
}
