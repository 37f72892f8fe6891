package services

import (
	"errors"
	"fmt"
)

// ErrNoSlotAvailable means the auto-reschedule search exhausted its bounds.
// The booking fails without creating an appointment; the customer must pick
// another date.
var ErrNoSlotAvailable = errors.New("no slot available on the requested date")

// ValidationError reports a bad input field. Nothing is persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AuthorizationError means the caller exists but may not perform the action.
// Controllers must render it as 403, distinct from not-found.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return e.Reason
}

// TransitionError reports an illegal status change.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %q to %q", e.From, e.To)
}

// AssignmentIncompleteError means an assign action was missing its
// technician, description, or duration. No task or status write happens.
type AssignmentIncompleteError struct {
	Missing string
}

func (e *AssignmentIncompleteError) Error() string {
	return fmt.Sprintf("assignment incomplete: missing %s", e.Missing)
}
