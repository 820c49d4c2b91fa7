package filestore

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	// ErrUnreadable indicates the file is missing, a directory, or not readable.
	ErrUnreadable = errors.New("file unreadable")

	// ErrUnwritable indicates the target directory is missing or not writable.
	ErrUnwritable = errors.New("file unwritable")

	// ErrIOFailure indicates reading or writing failed part way.
	ErrIOFailure = errors.New("i/o failure")
)

// PathError records a failed operation on a path.
// errors.Is matches both Kind and the underlying error.
type PathError struct {
	Op   string // open or save
	Path string
	Kind error // ErrUnreadable, ErrUnwritable or ErrIOFailure
	Err  error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

// Unwrap returns the kind and the underlying error.
func (e *PathError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newPathError(op, path string, kind, err error) *PathError {
	return &PathError{Op: op, Path: path, Kind: kind, Err: err}
}

// IsUnreadable reports whether err is an ErrUnreadable failure.
func IsUnreadable(err error) bool {
	return errors.Is(err, ErrUnreadable)
}

// IsUnwritable reports whether err is an ErrUnwritable failure.
func IsUnwritable(err error) bool {
	return errors.Is(err, ErrUnwritable)
}

// IsIOFailure reports whether err is an ErrIOFailure.
func IsIOFailure(err error) bool {
	return errors.Is(err, ErrIOFailure)
}
