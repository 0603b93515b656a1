package irrecoverable

import (
	"errors"
	"fmt"
)

// exception represents an unexpected error. An unexpected error is any error returned
// by a function, other than the error specifically documented as expected in that
// function's interface.
//
// It keeps the message of the original error, which could be a sentinel error used in the
// storage layer, but does not expose it through Unwrap. This prevents callers higher up the
// stack from confusing the error with a benign sentinel and handling it as such.
type exception struct {
	err error
}

var _ error = (*exception)(nil)

func (e exception) Error() string {
	return e.err.Error()
}

// NewException wraps the input error as an exception, stripping any sentinel
// error information from the error returned.
func NewException(err error) error {
	return exception{err: err}
}

// NewExceptionf is NewException with the ability to add formatting and context to the error.
// The returned error is an exception and does not wrap the input sentinels.
func NewExceptionf(msg string, args ...interface{}) error {
	return exception{err: fmt.Errorf(msg, args...)}
}

// IsException returns true if the given error is, or wraps, an exception.
func IsException(err error) bool {
	var e exception
	return errors.As(err, &e)
}
