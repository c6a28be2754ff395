// internal/app/store/errors.go
package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the referenced user, group, or membership does
	// not exist. Callers treat it as a normal negative result.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a unique constraint was violated under race,
	// e.g. two concurrent inserts for the same (group, user) pair. The
	// idempotent upsert paths are safe to retry.
	ErrConflict = errors.New("conflict")

	// ErrCapacityExceeded means a membership add was rejected by the
	// group's member cap. Surface to the user; do not retry.
	ErrCapacityExceeded = errors.New("group is at capacity")
)

// ValidationError reports malformed input to a create or update with
// field-level detail. Always recoverable by the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UnavailableError wraps a driver failure. Nothing is partially
// committed when one of these surfaces; transactions roll back first.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Unavailable wraps err as a store failure for the named operation.
func Unavailable(op string, err error) error {
	return &UnavailableError{Op: op, Err: err}
}

// IsUnavailable reports whether err is a wrapped driver failure.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}
