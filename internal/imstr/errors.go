package imstr

import (
	"errors"
	"fmt"
)

// Errors returned by String operations.
var (
	// ErrOutOfBounds indicates an offset past the end of the string, or a
	// range whose start is after its end.
	ErrOutOfBounds = errors.New("offset out of bounds")

	// ErrNotCharBoundary indicates an offset inside a multi-byte UTF-8 encoding.
	ErrNotCharBoundary = errors.New("offset is not a char boundary")

	// ErrInvalidEncoding indicates input bytes that are not valid UTF-8.
	ErrInvalidEncoding = errors.New("invalid UTF-8")

	// ErrNotSubslice indicates a string that does not point into the view.
	ErrNotSubslice = errors.New("not a substring of the view")
)

// RangeError describes a rejected offset or range.
type RangeError struct {
	Op   string // operation name, e.g. "Slice"
	From int    // requested start, relative to the view
	To   int    // requested end, relative to the view
	Len  int    // view length at the time of the call
	Err  error  // ErrOutOfBounds or ErrNotCharBoundary
}

func (e *RangeError) Error() string {
	if e.From == e.To {
		return fmt.Sprintf("imstr: %s at %d (len %d): %v", e.Op, e.From, e.Len, e.Err)
	}
	return fmt.Sprintf("imstr: %s [%d:%d] (len %d): %v", e.Op, e.From, e.To, e.Len, e.Err)
}

func (e *RangeError) Unwrap() error {
	return e.Err
}

// EncodingError describes input that failed UTF-8 validation.
type EncodingError struct {
	Op     string
	Offset int // first invalid byte in the input
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("imstr: %s: %v at byte %d", e.Op, e.Err, e.Offset)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

func rangeErr(op string, from, to, length int, err error) error {
	return &RangeError{Op: op, From: from, To: to, Len: length, Err: err}
}

// must panics with err if it is non-nil. Panicking forms use it so the panic
// value is the same error the Try form would return.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
