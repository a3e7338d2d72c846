package exam

import (
	"errors"
	"fmt"
)

// ErrUnsupportedMode is returned for an exam mode with no registered
// strategy. It is never retried or recovered.
var ErrUnsupportedMode = errors.New("exam: unsupported mode")

// ValidationError rejects a config before any source is queried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid exam config: %s %s", e.Field, e.Reason)
}

// SourceUnavailableError wraps a tier failure. The chain logs it and moves
// on to the next tier; callers only see it if the synthetic tier fails.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("item source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}
