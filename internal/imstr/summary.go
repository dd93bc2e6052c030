package imstr

import (
	"bytes"
	"unicode/utf8"
)

// Point is a line/column position. Both are 0-indexed and Column counts bytes.
type Point struct {
	Line   int
	Column int
}

// TextFlags indicate text properties for fast paths.
type TextFlags uint8

const (
	// FlagASCII indicates all characters are ASCII.
	FlagASCII TextFlags = 1 << iota

	// FlagHasNewlines indicates the text contains '\n'.
	FlagHasNewlines

	// FlagHasTabs indicates the text contains '\t'.
	FlagHasTabs
)

// Summary holds metrics for a span of text.
type Summary struct {
	Bytes        int
	Runes        int
	UTF16Units   int // for editor protocols that count in UTF-16
	Lines        int // number of '\n'
	LongestLine  int // in bytes, excluding the newline
	FirstLineLen int
	LastLineLen  int
	Flags        TextFlags
}

// ComputeSummary calculates metrics for text.
func ComputeSummary(text string) Summary {
	sum := Summary{Bytes: len(text), Flags: FlagASCII}
	lineLen := 0

	for _, r := range text {
		sum.Runes++
		if r > 0xFFFF {
			sum.UTF16Units += 2
		} else {
			sum.UTF16Units++
		}
		if r >= utf8.RuneSelf {
			sum.Flags &^= FlagASCII
		}

		switch r {
		case '\n':
			if sum.Lines == 0 {
				sum.FirstLineLen = lineLen
			}
			sum.Lines++
			sum.LongestLine = max(sum.LongestLine, lineLen)
			sum.Flags |= FlagHasNewlines
			lineLen = 0
			continue
		case '\t':
			sum.Flags |= FlagHasTabs
		}
		lineLen += utf8.RuneLen(r)
	}

	if sum.Lines == 0 {
		sum.FirstLineLen = lineLen
	}
	sum.LastLineLen = lineLen
	sum.LongestLine = max(sum.LongestLine, lineLen)
	return sum
}

// Summary computes metrics for s.
func (s *String[H]) Summary() Summary {
	return ComputeSummary(s.AsText())
}

// OffsetToPoint converts a byte offset to a line/column position.
func (s *String[H]) OffsetToPoint(off int) (Point, error) {
	n := s.Len()
	if err := checkOffset("OffsetToPoint", s.h.View(), s.start, n, off); err != nil {
		return Point{}, err
	}
	var p Point
	lineStart := 0
	for i, b := range s.bytes()[:off] {
		if b == '\n' {
			p.Line++
			lineStart = i + 1
		}
	}
	p.Column = off - lineStart
	return p, nil
}

// PointToOffset converts a line/column position to a byte offset.
// The column must lie within the line and on a character boundary.
func (s *String[H]) PointToOffset(p Point) (int, error) {
	data := s.bytes()
	n := len(data)
	if p.Line < 0 || p.Column < 0 {
		return 0, rangeErr("PointToOffset", p.Line, p.Column, n, ErrOutOfBounds)
	}

	lineStart := 0
	for line := 0; line < p.Line; line++ {
		i := bytes.IndexByte(data[lineStart:], '\n')
		if i < 0 {
			return 0, rangeErr("PointToOffset", p.Line, p.Column, n, ErrOutOfBounds)
		}
		lineStart += i + 1
	}

	lineEnd := n
	if i := bytes.IndexByte(data[lineStart:], '\n'); i >= 0 {
		lineEnd = lineStart + i
	}
	off := lineStart + p.Column
	if off > lineEnd {
		return 0, rangeErr("PointToOffset", p.Line, p.Column, n, ErrOutOfBounds)
	}
	if !isCharBoundary(s.h.View(), s.start+off) {
		return 0, rangeErr("PointToOffset", p.Line, p.Column, n, ErrNotCharBoundary)
	}
	return off, nil
}
