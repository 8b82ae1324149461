package source

import (
	"time"

	"github.com/okian/sdvxrec/pkg/logger"
)

type options struct {
	log          logger.Logger
	queryTimeout time.Duration
}

// Option configures a backend.
type Option func(*options)

// WithLogger sets the logger used for skipped entries and progress.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithQueryTimeout bounds every remote query. Zero disables the bound.
func WithQueryTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.queryTimeout = d
		}
	}
}

func buildOptions(name string, opts []Option) options {
	o := options{log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	o.log = o.log.Named(name)
	return o
}
