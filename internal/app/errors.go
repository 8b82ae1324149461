package app

import "errors"

// ErrNoSource is returned by Load when no backend is given.
var ErrNoSource = errors.New("no source")
