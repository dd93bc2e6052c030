package config

import (
	"errors"
	"fmt"
)

// ErrValidationFailed indicates a setting with an unusable value.
var ErrValidationFailed = errors.New("validation failed")

// ParseError reports a configuration source that could not be decoded.
// Line and Column are 1-based and zero when the decoder gave no position.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	pos := e.Path
	if e.Line > 0 {
		pos = fmt.Sprintf("%s:%d", pos, e.Line)
		if e.Column > 0 {
			pos = fmt.Sprintf("%s:%d", pos, e.Column)
		}
	}
	return fmt.Sprintf("config: %s: %s", pos, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
