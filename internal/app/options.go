package app

import "github.com/okian/sdvxrec/pkg/logger"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithFuzzySearch toggles similarity matching in RecordsByName. It is on by
// default.
func WithFuzzySearch(enabled bool) Option {
	return func(e *Engine) {
		e.fuzzy = enabled
	}
}

// WithMetrics toggles publication of load and query metrics.
func WithMetrics(enabled bool) Option {
	return func(e *Engine) {
		e.metrics = enabled
	}
}
