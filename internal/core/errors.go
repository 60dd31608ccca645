package core

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when an operation is started while another one is in
// flight. Callers drop the action.
var ErrBusy = errors.New("another operation is in progress")

// PreconditionError is raised before any request is issued. State is not
// touched.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func precondition(op, reason string) error {
	return &PreconditionError{Op: op, Reason: reason}
}

// IsPrecondition reports whether err is a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
