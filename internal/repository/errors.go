package repository

import (
	"errors"
	"fmt"
)

// ErrIO matches every failure returned by a repository.
var ErrIO = errors.New("i/o failure")

// IOError is the single failure kind surfaced by repositories. It matches
// ErrIO and still unwraps to the underlying cause.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}

func ioError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Err: err}
}
