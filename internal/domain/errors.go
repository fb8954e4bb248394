package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("booking not found")
	ErrTooLate  = errors.New("too late to cancel")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// SlotConflictError is returned when a create races another booking for at
// least one of the requested slots. Slots carries the rejected identifiers
// so the caller can refresh its availability view.
type SlotConflictError struct {
	Slots []string
}

func (e *SlotConflictError) Error() string {
	return "slots already booked: " + strings.Join(e.Slots, ", ")
}
