package system

import (
	"go.uber.org/zap"
)

// NewTestLogger returns the sugared logger idctl tests hand to components
// that want one. It is the development logger with automatic stacktraces
// disabled, so store-selection fallbacks and failed remote logouts don't
// bury test output in stack frames.
func NewTestLogger() *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	logger, _ := cfg.Build()
	return logger.Sugar()
}

// NewTestZapLogger returns a non-sugared *zap.Logger for tests that expect
// the original zap.Logger type (so they can call .Sugar() themselves).
func NewTestZapLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	logger, _ := cfg.Build()
	return logger
}
