// Package logger builds the process-wide zap logger.
package logger

import "go.uber.org/zap"

// New returns a sugared logger: JSON production config for prod, the
// colourised development config otherwise.
func New(prod bool) *zap.SugaredLogger {
	if prod {
		return zap.Must(zap.NewProduction()).Sugar()
	}
	return zap.Must(zap.NewDevelopment()).Sugar()
}

// Nop is a logger that discards everything. Tests use it.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
