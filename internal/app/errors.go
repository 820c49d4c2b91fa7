package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrQuit signals that the console should exit normally.
	ErrQuit = errors.New("quit requested")

	// ErrNotStarted indicates Startup has not run.
	ErrNotStarted = errors.New("application not started")

	// ErrAlreadyStarted indicates Startup was called twice.
	ErrAlreadyStarted = errors.New("application already started")

	// ErrShutdown indicates the application has been shut down.
	ErrShutdown = errors.New("application shut down")

	// ErrCanceled indicates the user canceled a confirmation.
	ErrCanceled = errors.New("canceled")

	// ErrUnknownCommand indicates an unrecognized console command.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUsage indicates a console command was given bad arguments.
	ErrUsage = errors.New("usage")
)

// OperationError represents an error that occurred during a specific operation.
type OperationError struct {
	Op     string // Operation name (e.g., "save", "open")
	Target string // Target of the operation, usually a path
	Err    error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{
		Op:     op,
		Target: target,
		Err:    err,
	}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}

	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ComponentError represents a failure to set up a component.
type ComponentError struct {
	Component string // Component name (e.g., "watcher", "prefs")
	Err       error  // Underlying error
}

func (e *ComponentError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Component, e.Err)
	}
	return e.Component
}

func (e *ComponentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
