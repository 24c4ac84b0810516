// File: internal/browser/errors.go
package browser

import (
	"context"
	"errors"
)

// ErrWaitTimeout marks an operation that missed its explicit upper bound.
// Callers distinguish it from genuine I/O failures to decide whether a step
// is fatal; see IsTimeout.
var ErrWaitTimeout = errors.New("browser: wait timed out")

// IsTimeout reports whether the error is a bounded-wait expiry rather than a
// hard browser failure. Both the package sentinel and a raw deadline from a
// caller-supplied context count.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrWaitTimeout) || errors.Is(err, context.DeadlineExceeded)
}
