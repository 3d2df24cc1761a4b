package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a reservation, request, lab, or session
// id does not resolve to a row.
var ErrNotFound = errors.New("not found")

// ErrNotOwner is returned when an actor operates on a request they do
// not own without administrative override.
var ErrNotOwner = errors.New("not the owner of this request")

// ValidationError marks malformed input, rejected before any store write.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError marks an overlap or precedence violation. Date names the
// first calendar date on which the collision occurs.
type ConflictError struct {
	Reason string
	Date   string
}

func (e *ConflictError) Error() string {
	if e.Date != "" {
		return fmt.Sprintf("%s on %s", e.Reason, e.Date)
	}
	return e.Reason
}

// StateError marks an operation that is invalid for the row's current
// state, such as deciding a non-pending request or cancelling an
// already-cancelled occurrence.
type StateError struct {
	Msg string
}

func (e *StateError) Error() string { return e.Msg }

func statef(format string, args ...any) error {
	return &StateError{Msg: fmt.Sprintf(format, args...)}
}
