package service

import (
	"errors"
	"fmt"
)

// --- Error Definitions ---
var (
	// ErrNotFound covers both "entity does not exist" and "caller does not
	// own it". The two are deliberately indistinguishable so that probing for
	// other users' entities reveals nothing.
	ErrNotFound = errors.New("not found")

	ErrWorkoutAlreadyStarted = errors.New("workout already started")
	ErrWorkoutNotStarted     = errors.New("workout not started")
	ErrWorkoutAlreadyEnded   = errors.New("workout already ended")
)

// ValidationError rejects a mutation before any storage write or ownership
// check, with a field-level message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Message)
}

// IsConflict reports whether err is one of the domain-sequencing violations,
// which the API surfaces distinctly from not-found.
func IsConflict(err error) bool {
	return errors.Is(err, ErrWorkoutAlreadyStarted) ||
		errors.Is(err, ErrWorkoutNotStarted) ||
		errors.Is(err, ErrWorkoutAlreadyEnded)
}
