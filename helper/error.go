package helper

import "fmt"

// Error wraps an underlying error with the operation that failed
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("error in %v: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with the failing operation
func NewError(op string, err error) error {
	return &Error{Op: op, Err: err}
}
