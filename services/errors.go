package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an event or participant does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateTransaction is returned when a transaction id is already
// claimed by another participant.
var ErrDuplicateTransaction = errors.New("transaction id already claimed by another participant")

// EligibilityError is an expected, user-facing rejection. It carries the
// specific reason shown to the user and is never treated as a server fault.
type EligibilityError struct {
	Reason string
}

func (e *EligibilityError) Error() string {
	return e.Reason
}

// InvariantError marks an operation that would corrupt the data model, such
// as registering an individual for a team event. The record stays unchanged.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return e.Msg
}

func invariantf(format string, args ...interface{}) error {
	return &InvariantError{Msg: fmt.Sprintf(format, args...)}
}
