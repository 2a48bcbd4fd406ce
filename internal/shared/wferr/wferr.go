// Package wferr defines the workflow error taxonomy shared by every
// service. Handlers map these to HTTP status codes; messages always name
// the violated condition so operators know which upstream step to fix.
package wferr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound — referenced entity id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState — entity exists but its current state does not
	// permit the requested transition.
	ErrInvalidState = errors.New("invalid state")
	// ErrValidation — structurally invalid payload, rejected before any
	// database write.
	ErrValidation = errors.New("validation failed")
	// ErrConflict — concurrent mutation raced this one (duplicate
	// dispatch, sequence collision).
	ErrConflict = errors.New("conflict")
)

func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func InvalidState(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
