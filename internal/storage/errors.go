package storage

import "errors"

// Errors raised by storage operations.
//
// Both are fatal: they are only ever used as panic values, never returned.
var (
	// ErrAllocationFailure indicates a requested buffer size cannot be represented.
	ErrAllocationFailure = errors.New("storage: allocation failure")

	// ErrDoubleRelease indicates a buffer was released more times than it was retained.
	ErrDoubleRelease = errors.New("storage: buffer released twice")

	// ErrReadOnly indicates a write was attempted on a read-only (mapped) buffer.
	ErrReadOnly = errors.New("storage: buffer is read-only")
)
