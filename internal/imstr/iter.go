package imstr

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/dshills/imstr/internal/storage"
)

// LineIterator iterates over the lines of a string. Line terminators ("\n"
// or "\r\n") are not part of a line, and a final empty line is not reported.
type LineIterator[H storage.Handle[H]] struct {
	s        *String[H]
	next     int
	from, to int
	line     int
}

// Lines returns an iterator over the lines of s.
// s must not be mutated while the iterator is in use.
func (s *String[H]) Lines() *LineIterator[H] {
	return &LineIterator[H]{s: s, line: -1}
}

// Next advances to the next line.
// Returns true if there is a line, false if iteration is complete.
func (it *LineIterator[H]) Next() bool {
	text := it.s.AsText()
	if it.next >= len(text) {
		return false
	}
	it.from = it.next
	if i := strings.IndexByte(text[it.from:], '\n'); i >= 0 {
		it.to = it.from + i
		it.next = it.to + 1
	} else {
		it.to = len(text)
		it.next = len(text)
	}
	if it.to > it.from && text[it.to-1] == '\r' {
		it.to--
	}
	it.line++
	return true
}

// Text returns the current line without copying. It aliases the string.
func (it *LineIterator[H]) Text() string {
	return it.s.AsText()[it.from:it.to]
}

// Value returns the current line as a new string sharing the buffer.
// The caller owns the result.
func (it *LineIterator[H]) Value() *String[H] {
	return it.s.Slice(it.from, it.to)
}

// Line returns the 0-indexed number of the current line.
func (it *LineIterator[H]) Line() int {
	return it.line
}

// Offset returns the byte offset of the current line.
func (it *LineIterator[H]) Offset() int {
	return it.from
}

// RuneIterator iterates over the characters of a string.
type RuneIterator[H storage.Handle[H]] struct {
	s      *String[H]
	offset int
	size   int
	r      rune
}

// Runes returns an iterator over the characters of s.
func (s *String[H]) Runes() *RuneIterator[H] {
	return &RuneIterator[H]{s: s}
}

// Next advances to the next character.
func (it *RuneIterator[H]) Next() bool {
	it.offset += it.size
	data := it.s.bytes()
	if it.offset >= len(data) {
		it.size = 0
		return false
	}
	it.r, it.size = utf8.DecodeRune(data[it.offset:])
	return true
}

// Rune returns the current character.
func (it *RuneIterator[H]) Rune() rune {
	return it.r
}

// Offset returns the byte offset of the current character.
func (it *RuneIterator[H]) Offset() int {
	return it.offset
}

// GraphemeIterator iterates over the grapheme clusters of a string.
type GraphemeIterator[H storage.Handle[H]] struct {
	s        *String[H]
	g        *uniseg.Graphemes
	from, to int
}

// Graphemes returns an iterator over the user-perceived characters of s.
func (s *String[H]) Graphemes() *GraphemeIterator[H] {
	return &GraphemeIterator[H]{s: s, g: uniseg.NewGraphemes(s.AsText())}
}

// Next advances to the next grapheme cluster.
func (it *GraphemeIterator[H]) Next() bool {
	if !it.g.Next() {
		return false
	}
	it.from, it.to = it.g.Positions()
	return true
}

// Text returns the current cluster without copying.
func (it *GraphemeIterator[H]) Text() string {
	return it.g.Str()
}

// Value returns the current cluster as a new string sharing the buffer.
func (it *GraphemeIterator[H]) Value() *String[H] {
	return it.s.Slice(it.from, it.to)
}

// Offset returns the byte offset of the current cluster.
func (it *GraphemeIterator[H]) Offset() int {
	return it.from
}

// Width returns the monospace display width of the current cluster.
func (it *GraphemeIterator[H]) Width() int {
	return it.g.Width()
}
