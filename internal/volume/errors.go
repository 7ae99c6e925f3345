package volume

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

var (
	ErrNotFound      = errors.New("entry not found")
	ErrUnavailable   = errors.New("volume unavailable")
	ErrAlreadyExists = errors.New("entry already exists")
	ErrParentInvalid = errors.New("parent directory invalid")
	ErrInvalidName   = errors.New("invalid name")
	ErrLocked        = errors.New("entry locked")
	ErrIO            = errors.New("i/o failure")
)

// IOError wraps a filesystem failure. It keeps the operation and the underlying
// cause but drops any host path so it can cross the connector boundary.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + ErrIO.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrIO) match any IOError.
func (e *IOError) Is(target error) bool { return target == ErrIO }

// NewIOError builds an IOError, reducing path-carrying errors to their cause.
func NewIOError(op string, err error) error {
	return &IOError{Op: op, Err: stripPath(err)}
}

func stripPath(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	var le *os.LinkError
	if errors.As(err, &le) {
		return le.Err
	}
	return err
}
