// Package logger holds the fintrack API's global structured logger, a zap
// SugaredLogger shared by handlers, services, and middleware.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init configures the global logger for the given environment: a JSON
// encoder for "production", a human-readable console encoder otherwise.
// Subsequent calls are no-ops.
func Init(env string) {
	once.Do(func() {
		base, err := newBase(env)
		if err != nil {
			// Logging must never take the API down.
			base = zap.NewNop()
		}
		sugar = base.Sugar()
	})
}

func newBase(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// Get returns the global sugared logger, initializing a development logger
// if Init has not run yet.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Sync flushes buffered entries. Call before the process exits.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
