package pipeline

import (
	"errors"
	"fmt"
)

// ErrAlreadyDecided is returned when a decision is recorded for a draft whose
// approval was already decided. First writer wins; later conflicting
// decisions get this error and the draft stays unchanged.
var ErrAlreadyDecided = errors.New("approval already decided")

// ErrNotFound is returned when a draft or idea cannot be located.
var ErrNotFound = errors.New("not found")

// ConfigError reports a missing required credential or parameter. It aborts
// the stage immediately, before any provider call or draft mutation.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Field)
}

// ValidationError reports malformed stage input. It is surfaced before any
// provider call is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
