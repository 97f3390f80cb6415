// Package xlog is a thin wrapper around zap, giving the rest of the
// codebase one place to pick between a production and a development
// logger rather than importing zap directly everywhere.
package xlog

import "go.uber.org/zap"

// New builds a *zap.Logger. debug selects zap's development config
// (human-readable, debug-level, stack traces on warn) over its
// production config (JSON, info-level).
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
