// Package source reads the music catalog and raw score events from one of
// the supported backends.
package source

import (
	"context"

	"github.com/okian/sdvxrec/internal/domain/model"
)

// Backend names, also used as metric labels.
const (
	NameLocal  = "local"
	NameRemote = "remote"
)

// Source is a read-only backend. Catalog is read before Events.
type Source interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	// Catalog returns every music known to the backend.
	Catalog(ctx context.Context) ([]model.Music, error)
	// Events streams the owner's raw score events to yield. Malformed
	// entries are skipped, not returned as errors.
	Events(ctx context.Context, yield func(model.RawScoreEvent)) error
	// Close releases backend resources.
	Close() error
}
