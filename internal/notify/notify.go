// Package notify delivers user-visible notifications. Workflows report the
// outcome of every remote operation through a Notifier instead of returning
// raw errors to the presentation layer.
package notify

import (
	"fmt"
	"io"
)

// Notifier is the sink for user-facing messages.
type Notifier interface {
	// Success reports a completed operation.
	Success(msg string)

	// Error reports a failed operation. The message should be suitable for
	// end users; internal details belong in the log.
	Error(msg string)

	// Info reports a neutral status change (e.g. "you have been logged out").
	Info(msg string)
}

// Terminal writes notifications as plain lines to w.
type Terminal struct {
	w io.Writer
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Success(msg string) {
	fmt.Fprintln(t.w, "[ok] "+msg)
}

func (t *Terminal) Error(msg string) {
	fmt.Fprintln(t.w, "[error] "+msg)
}

func (t *Terminal) Info(msg string) {
	fmt.Fprintln(t.w, "[info] "+msg)
}
