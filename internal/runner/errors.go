// File: internal/runner/errors.go
package runner

import (
	"fmt"

	"github.com/xkilldash9x/pagepilot/internal/auth"
)

// ConfigError marks a task that cannot run because its configuration does not
// resolve: a dangling profile reference or an uninterpretable target URL. It
// is fatal to the task, never to the run.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// AuthError marks a task aborted by a failed authentication outcome. The
// message is surfaced verbatim in the task's status line.
type AuthError struct {
	Reason auth.FailureReason
	Msg    string
}

func (e *AuthError) Error() string { return e.Msg }
