package editor

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when an operation is attempted while another transform
// is still in flight for the same session.
var ErrBusy = errors.New("editor: another operation is in flight")

// ErrNoSuchLayer is returned for layer IDs not present in the active set.
var ErrNoSuchLayer = errors.New("editor: no such layer")

// ValidationError is a precondition failure detected before any external
// call. The message is written for the end user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// OpError wraps a failed transform with the operation name so the surfaced
// message reads "<operation> failed: <cause>". The session state is unchanged
// when one of these is returned.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
