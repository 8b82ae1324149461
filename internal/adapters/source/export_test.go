package source

import (
	"context"

	"github.com/okian/sdvxrec/internal/config"
)

// SetRemoteOpener replaces the remote connector and returns a func that
// restores it.
func SetRemoteOpener(f func(ctx context.Context, cfg config.Remote, opts ...Option) (Source, error)) func() {
	prev := remoteOpener
	remoteOpener = f
	return func() { remoteOpener = prev }
}
