// File: internal/auth/outcome.go
package auth

import "fmt"

// FailureReason classifies why authentication failed.
type FailureReason string

const (
	// ReasonMissingCredentials means no usable username/password was resolved
	// from the profile or the environment fallback.
	ReasonMissingCredentials FailureReason = "missing_credentials"
	// ReasonNavigationTimeout means the login page never reached a minimal
	// load state within the wait timeout.
	ReasonNavigationTimeout FailureReason = "navigation_timeout"
	// ReasonLoginWaitTimeout means the post-submit race exhausted every armed
	// waiter without a positive signal.
	ReasonLoginWaitTimeout FailureReason = "login_wait_timeout"
	// ReasonKnownLoginError means a configured error banner was visible with
	// its expected message despite an apparent success signal.
	ReasonKnownLoginError FailureReason = "known_login_error"
	// ReasonSessionError covers genuine I/O failures of the browser session
	// during the login flow.
	ReasonSessionError FailureReason = "session_error"
)

// Status is the terminal state of an authentication attempt.
type Status int

const (
	// StatusFailed is the zero value so an empty Outcome never reads as
	// success.
	StatusFailed Status = iota
	// StatusAlreadyAuthenticated means the logged-in indicator was visible
	// before any navigation happened.
	StatusAlreadyAuthenticated
	// StatusAuthenticated means the login flow completed with no known error
	// detected.
	StatusAuthenticated
	// StatusTwoFactorRequired means the two-factor prompt won the race; the
	// operator was asked to complete it manually.
	StatusTwoFactorRequired
)

func (s Status) String() string {
	switch s {
	case StatusAlreadyAuthenticated:
		return "already-authenticated"
	case StatusAuthenticated:
		return "authenticated"
	case StatusTwoFactorRequired:
		return "two-factor-required"
	default:
		return "failed"
	}
}

// Outcome is the tagged result of an authentication attempt. Reason and
// Message are populated only for StatusFailed.
type Outcome struct {
	Status  Status
	Reason  FailureReason
	Message string
}

// Failed reports whether the outcome is terminal failure.
func (o Outcome) Failed() bool { return o.Status == StatusFailed }

func failure(reason FailureReason, format string, args ...any) Outcome {
	return Outcome{
		Status:  StatusFailed,
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
	}
}
