package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/sdvxrec/internal/config"
	"github.com/okian/sdvxrec/pkg/logger"
)

// remoteOpener connects the remote backend; tests swap it for a local
// database.
var remoteOpener = func(ctx context.Context, cfg config.Remote, opts ...Option) (Source, error) { //nolint:gochecknoglobals // test seam
	r, err := OpenRemote(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Open returns the backend selected by cfg.Source. The local backend is
// preloaded: its music database is decoded and its log opened before Open
// returns. With "auto" the local backend is tried first and the remote one
// is used when local is not configured or fails to preload. The log
// receives fallback warnings.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (Source, error) {
	if log == nil {
		log = logger.Nop()
	}
	opts = append([]Option{WithLogger(log)}, opts...)

	switch cfg.Source {
	case config.SourceLocal:
		return openLocal(ctx, cfg.Local, opts...)
	case config.SourceRemote:
		return remoteOpener(ctx, cfg.Remote, opts...)
	case config.SourceAuto:
	default:
		return nil, fmt.Errorf("%w: unknown source %q", ErrNoBackend, cfg.Source)
	}

	var errs []error
	if cfg.LocalReady() {
		src, err := openLocal(ctx, cfg.Local, opts...)
		if err == nil {
			return src, nil
		}
		log.Warn(ctx, "local backend unavailable, trying remote", logger.Error(err))
		errs = append(errs, err)
	}
	if cfg.RemoteReady() {
		src, err := remoteOpener(ctx, cfg.Remote, opts...)
		if err == nil {
			return src, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrNoBackend
	}
	return nil, fmt.Errorf("%w: %w", ErrNoBackend, errors.Join(errs...))
}

func openLocal(ctx context.Context, cfg config.Local, opts ...Option) (Source, error) {
	l, err := NewLocal(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := l.Preload(ctx); err != nil {
		return nil, err
	}
	return l, nil
}
