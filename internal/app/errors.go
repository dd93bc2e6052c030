// Package app wires configuration, logging, metrics and the string
// processing modes behind the imstr command.
package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrUnknownMode indicates an unsupported -mode value.
	ErrUnknownMode = errors.New("unknown mode")

	// ErrMissingScript indicates lua mode without a script.
	ErrMissingScript = errors.New("lua mode requires a script")

	// ErrPathNotFound indicates a JSON path or field key with no match.
	ErrPathNotFound = errors.New("path not found")
)

// InitError reports a component that failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initializing %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// InputError reports malformed input at a position in a file.
type InputError struct {
	Path   string
	Line   int // 1-based, 0 if unknown
	Column int // 1-based, 0 if unknown
	Msg    string
	Err    error
}

func (e *InputError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Msg)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
	default:
		return fmt.Sprintf("%s: %s", e.Path, e.Msg)
	}
}

func (e *InputError) Unwrap() error {
	return e.Err
}
