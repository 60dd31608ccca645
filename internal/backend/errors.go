package backend

import (
	"errors"
	"fmt"
)

// TransportError means the request could not be completed: the network failed,
// the deadline passed or the backend answered with a non-success status.
type TransportError struct {
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Detail != "":
		return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, e.Detail)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: backend returned %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + ": request failed"
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError means the backend answered but the body was unusable.
type MalformedResponseError struct {
	Op    string
	Field string
	Err   error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: malformed response (%s): %v", e.Op, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: malformed response: missing %s", e.Op, e.Field)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// IsRequestFailure reports whether err is a transport or malformed-response
// failure. Both are shown to the user the same way.
func IsRequestFailure(err error) bool {
	var te *TransportError
	var me *MalformedResponseError
	return errors.As(err, &te) || errors.As(err, &me)
}
