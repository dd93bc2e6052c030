package luabind

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrInstructionLimit is returned when a run exceeds its operation budget.
	ErrInstructionLimit = errors.New("lua instruction limit exceeded")

	// ErrExecutionTimeout is returned when a run exceeds its time budget.
	ErrExecutionTimeout = errors.New("lua execution timeout")
)
