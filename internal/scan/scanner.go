// Package scan reads tokens out of an imstr string without copying.
//
// A Scanner walks its input one character at a time and hands out tokens as
// slices of the input's buffer, so a parser built on it allocates only the
// small String headers for the tokens it keeps. Tokens are owned by the
// caller and must be released.
package scan

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/imstr/internal/imstr"
	"github.com/dshills/imstr/internal/storage"
)

// SyntaxError reports malformed input at a position.
type SyntaxError struct {
	Point  imstr.Point
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Point.Line+1, e.Point.Column+1, e.Msg)
}

// Scanner is a forward cursor over a string.
// The source must not be mutated while the scanner is in use.
type Scanner[H storage.Handle[H]] struct {
	src  *imstr.String[H]
	text string
	pos  int
}

// New returns a scanner positioned at the start of src.
// The scanner does not take ownership of src.
func New[H storage.Handle[H]](src *imstr.String[H]) *Scanner[H] {
	return &Scanner[H]{src: src, text: src.AsText()}
}

// Pos returns the current byte offset.
func (sc *Scanner[H]) Pos() int {
	return sc.pos
}

// Point returns the current line/column position.
func (sc *Scanner[H]) Point() imstr.Point {
	p, _ := sc.src.OffsetToPoint(sc.pos)
	return p
}

// EOF reports whether all input has been consumed.
func (sc *Scanner[H]) EOF() bool {
	return sc.pos >= len(sc.text)
}

// Reset moves the scanner back to a position returned by Pos.
func (sc *Scanner[H]) Reset(pos int) error {
	if pos < 0 || pos > len(sc.text) {
		return fmt.Errorf("scan: reset to %d: %w", pos, imstr.ErrOutOfBounds)
	}
	if !sc.src.IsCharBoundary(pos) {
		return fmt.Errorf("scan: reset to %d: %w", pos, imstr.ErrNotCharBoundary)
	}
	sc.pos = pos
	return nil
}

// Peek returns the next character without consuming it.
func (sc *Scanner[H]) Peek() (rune, bool) {
	if sc.EOF() {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(sc.text[sc.pos:])
	return r, true
}

// Next consumes and returns the next character.
func (sc *Scanner[H]) Next() (rune, bool) {
	if sc.EOF() {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(sc.text[sc.pos:])
	sc.pos += size
	return r, true
}

// HasPrefix reports whether the unconsumed input starts with prefix.
func (sc *Scanner[H]) HasPrefix(prefix string) bool {
	return strings.HasPrefix(sc.text[sc.pos:], prefix)
}

// Tag consumes prefix if the input starts with it.
func (sc *Scanner[H]) Tag(prefix string) bool {
	if !sc.HasPrefix(prefix) {
		return false
	}
	sc.pos += len(prefix)
	return true
}

// Since returns the input consumed from start to the current position.
func (sc *Scanner[H]) Since(start int) *imstr.String[H] {
	return sc.src.Slice(start, sc.pos)
}

// Take consumes the next n characters. If fewer remain, nothing is consumed
// and a *SyntaxError is returned.
func (sc *Scanner[H]) Take(n int) (*imstr.String[H], error) {
	start := sc.pos
	for i := 0; i < n; i++ {
		if _, ok := sc.Next(); !ok {
			sc.pos = start
			return nil, sc.Errorf("expected %d characters, found %d", n, i)
		}
	}
	return sc.Since(start), nil
}

// TakeWhile consumes characters while f returns true.
// The result may be empty.
func (sc *Scanner[H]) TakeWhile(f func(rune) bool) *imstr.String[H] {
	start := sc.pos
	for {
		r, ok := sc.Peek()
		if !ok || !f(r) {
			break
		}
		sc.pos += utf8.RuneLen(r)
	}
	return sc.Since(start)
}

// TakeUntil consumes input up to, but not including, sep.
// If sep does not occur, nothing is consumed and ok is false.
func (sc *Scanner[H]) TakeUntil(sep string) (tok *imstr.String[H], ok bool) {
	i := strings.Index(sc.text[sc.pos:], sep)
	if i < 0 {
		return nil, false
	}
	start := sc.pos
	sc.pos += i
	return sc.Since(start), true
}

// SkipSpace consumes white space and returns the number of bytes skipped.
func (sc *Scanner[H]) SkipSpace() int {
	start := sc.pos
	for {
		r, ok := sc.Peek()
		if !ok || !unicode.IsSpace(r) {
			break
		}
		sc.pos += utf8.RuneLen(r)
	}
	return sc.pos - start
}

// Rest consumes and returns all remaining input.
func (sc *Scanner[H]) Rest() *imstr.String[H] {
	start := sc.pos
	sc.pos = len(sc.text)
	return sc.Since(start)
}

// Errorf returns a *SyntaxError at the current position.
func (sc *Scanner[H]) Errorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Point:  sc.Point(),
		Offset: sc.pos,
		Msg:    fmt.Sprintf(format, args...),
	}
}
