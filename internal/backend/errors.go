package backend

import "errors"

var (
	// ErrNotFound reports an absent row. Workflows treat it as a normal
	// "create new" state, not a failure.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized reports a rejected credential check or a request made
	// without an active session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDuplicateEmail reports a registration attempt with an email that is
	// already taken.
	ErrDuplicateEmail = errors.New("email already registered")
)
