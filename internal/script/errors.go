package script

import "errors"

// Errors for script execution.
var (
	// ErrStateClosed is returned when running on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrInstructionLimit is returned when a script makes too many doc calls.
	ErrInstructionLimit = errors.New("lua instruction limit exceeded")

	// ErrTimeout is returned when a script runs past its timeout.
	ErrTimeout = errors.New("lua execution timeout")
)
