package store

import "errors"

// Invalid state transitions surfaced to handlers. Not-found is reported as
// (nil, nil) from Get-style methods instead.
var (
	ErrAlreadyCompleted = errors.New("assignment already completed")
	ErrExpired          = errors.New("assignment expired")
	ErrNotCompleted     = errors.New("assignment is not completed")
)
