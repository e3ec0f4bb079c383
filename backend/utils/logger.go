package utils

import (
	"strings"

	"go.uber.org/zap"
)

// InitLogger builds the process-wide logger. Every swallowed failure in
// the sync and cache layers goes through it, so tests can swap in an
// observer core and assert on entries.
func InitLogger(mode string) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
