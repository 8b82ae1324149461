package repl

import "errors"

// Command errors. They are printed to the user and never end the session.
var (
	ErrUnknownCommand = errors.New("no such command")
	ErrUsage          = errors.New("usage")
)
