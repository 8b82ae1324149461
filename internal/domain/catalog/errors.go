package catalog

import "errors"

// ErrParseFailure marks a catalog that could not be read or decoded. It is
// fatal at load time.
var ErrParseFailure = errors.New("catalog parse failure")
