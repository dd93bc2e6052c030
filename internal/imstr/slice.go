package imstr

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
	"unsafe"
)

// Slice returns the string's bytes [from, to) as a new string sharing the
// buffer. Offsets are relative to s. It panics with a *RangeError if the
// range is out of bounds or splits a character.
func (s *String[H]) Slice(from, to int) *String[H] {
	sub, err := s.TrySlice(from, to)
	must(err)
	return sub
}

// TrySlice is like Slice but returns an error instead of panicking.
func (s *String[H]) TrySlice(from, to int) (*String[H], error) {
	s.copyCheck()
	if err := checkRange("Slice", s.h.View(), s.start, s.Len(), from, to); err != nil {
		return nil, err
	}
	return s.sub(from, to), nil
}

// sub returns [from, to) without checks.
func (s *String[H]) sub(from, to int) *String[H] {
	stats.slices.Add(1)
	return wrap(s.h.Clone(), s.start+from, s.start+to)
}

// SliceFrom returns s[from:].
func (s *String[H]) SliceFrom(from int) *String[H] {
	return s.Slice(from, s.Len())
}

// TrySliceFrom is like SliceFrom but returns an error instead of panicking.
func (s *String[H]) TrySliceFrom(from int) (*String[H], error) {
	return s.TrySlice(from, s.Len())
}

// SliceTo returns s[:to].
func (s *String[H]) SliceTo(to int) *String[H] {
	return s.Slice(0, to)
}

// TrySliceTo is like SliceTo but returns an error instead of panicking.
func (s *String[H]) TrySliceTo(to int) (*String[H], error) {
	return s.TrySlice(0, to)
}

// SliceRef converts sub, a Go substring of s.AsText(), back into a string
// sharing s's buffer. This lets results of the strings package or a parser
// working on AsText be kept without copying.
//
// An empty sub maps to the position its data pointer records, which for an
// empty Go substring is usually offset 0.
func (s *String[H]) SliceRef(sub string) *String[H] {
	r, err := s.TrySliceRef(sub)
	must(err)
	return r
}

// TrySliceRef is like SliceRef but returns an error instead of panicking.
func (s *String[H]) TrySliceRef(sub string) (*String[H], error) {
	s.copyCheck()
	from, ok := offsetOf(s.AsText(), sub)
	if !ok {
		return nil, fmt.Errorf("imstr: SliceRef: %w", ErrNotSubslice)
	}
	return s.TrySlice(from, from+len(sub))
}

// offsetOf returns the offset of sub within text if sub's bytes lie inside text.
func offsetOf(text, sub string) (int, bool) {
	if len(text) == 0 {
		return 0, len(sub) == 0
	}
	base := uintptr(unsafe.Pointer(unsafe.StringData(text)))
	if len(sub) == 0 {
		p := uintptr(unsafe.Pointer(unsafe.StringData(sub)))
		if p == 0 {
			return 0, true
		}
		if p < base || p > base+uintptr(len(text)) {
			return 0, false
		}
		return int(p - base), true
	}
	p := uintptr(unsafe.Pointer(unsafe.StringData(sub)))
	if p < base || p+uintptr(len(sub)) > base+uintptr(len(text)) {
		return 0, false
	}
	return int(p - base), true
}

// IsCharBoundary reports whether off is a valid place to slice s.
func (s *String[H]) IsCharBoundary(off int) bool {
	if off < 0 || off > s.Len() {
		return false
	}
	return isCharBoundary(s.h.View(), s.start+off)
}

// RuneAt decodes the character starting at off and returns it with its width.
func (s *String[H]) RuneAt(off int) (rune, int, error) {
	n := s.Len()
	if off >= n {
		return utf8.RuneError, 0, rangeErr("RuneAt", off, off, n, ErrOutOfBounds)
	}
	if err := checkOffset("RuneAt", s.h.View(), s.start, n, off); err != nil {
		return utf8.RuneError, 0, err
	}
	r, size := utf8.DecodeRune(s.bytes()[off:])
	return r, size, nil
}

// Index returns the offset of the first instance of sub, or -1.
func (s *String[H]) Index(sub string) int {
	return strings.Index(s.AsText(), sub)
}

// LastIndex returns the offset of the last instance of sub, or -1.
func (s *String[H]) LastIndex(sub string) int {
	return strings.LastIndex(s.AsText(), sub)
}

// Contains reports whether sub is within s.
func (s *String[H]) Contains(sub string) bool {
	return strings.Contains(s.AsText(), sub)
}

// HasPrefix reports whether s begins with prefix.
func (s *String[H]) HasPrefix(prefix string) bool {
	return strings.HasPrefix(s.AsText(), prefix)
}

// HasSuffix reports whether s ends with suffix.
func (s *String[H]) HasSuffix(suffix string) bool {
	return strings.HasSuffix(s.AsText(), suffix)
}

// indexValid is strings.Index restricted to valid UTF-8 separators, which
// can only match at character boundaries of valid text.
func indexValid(text, sep string) int {
	if !utf8.ValidString(sep) {
		return -1
	}
	return strings.Index(text, sep)
}

// SplitAt returns s[:mid] and s[mid:], both sharing the buffer.
func (s *String[H]) SplitAt(mid int) (*String[H], *String[H]) {
	a, b, err := s.TrySplitAt(mid)
	must(err)
	return a, b
}

// TrySplitAt is like SplitAt but returns an error instead of panicking.
func (s *String[H]) TrySplitAt(mid int) (*String[H], *String[H], error) {
	s.copyCheck()
	if err := checkOffset("SplitAt", s.h.View(), s.start, s.Len(), mid); err != nil {
		return nil, nil, err
	}
	return s.sub(0, mid), s.sub(mid, s.Len()), nil
}

// Cut slices s around the first instance of sep, as strings.Cut does.
// If sep is not found, before is a clone of s and after is empty.
func (s *String[H]) Cut(sep string) (before, after *String[H], found bool) {
	n := s.Len()
	if i := indexValid(s.AsText(), sep); i >= 0 {
		return s.Slice(0, i), s.Slice(i+len(sep), n), true
	}
	return s.Slice(0, n), s.Slice(n, n), false
}

// CutPrefix returns s without prefix and reports whether it was there.
func (s *String[H]) CutPrefix(prefix string) (*String[H], bool) {
	if utf8.ValidString(prefix) && s.HasPrefix(prefix) {
		return s.Slice(len(prefix), s.Len()), true
	}
	return s.Slice(0, s.Len()), false
}

// CutSuffix returns s without suffix and reports whether it was there.
func (s *String[H]) CutSuffix(suffix string) (*String[H], bool) {
	n := s.Len()
	if utf8.ValidString(suffix) && s.HasSuffix(suffix) {
		return s.Slice(0, n-len(suffix)), true
	}
	return s.Slice(0, n), false
}

// Until returns s up to the first instance of sep, or all of s.
func (s *String[H]) Until(sep string) *String[H] {
	if i := indexValid(s.AsText(), sep); i >= 0 {
		return s.Slice(0, i)
	}
	return s.Slice(0, s.Len())
}

// Split slices s into all substrings separated by sep, as strings.Split does.
func (s *String[H]) Split(sep string) []*String[H] {
	return s.SplitN(sep, -1)
}

// SplitN is like Split but returns at most n parts; n < 0 means all.
func (s *String[H]) SplitN(sep string, n int) []*String[H] {
	if n == 0 {
		return nil
	}
	text := s.AsText()
	if sep == "" {
		return s.explode(n)
	}
	if !utf8.ValidString(sep) {
		return []*String[H]{s.Slice(0, len(text))}
	}
	if n < 0 {
		n = strings.Count(text, sep) + 1
	}

	parts := make([]*String[H], 0, min(n, len(text)+1))
	off := 0
	for len(parts) < n-1 {
		m := strings.Index(text[off:], sep)
		if m < 0 {
			break
		}
		parts = append(parts, s.Slice(off, off+m))
		off += m + len(sep)
	}
	return append(parts, s.Slice(off, len(text)))
}

// explode splits s into single characters, the last part holding the rest.
func (s *String[H]) explode(n int) []*String[H] {
	text := s.AsText()
	count := utf8.RuneCountInString(text)
	if n < 0 || n > count {
		n = count
	}
	parts := make([]*String[H], 0, n)
	off := 0
	for i := 0; i < n-1; i++ {
		_, size := utf8.DecodeRuneInString(text[off:])
		parts = append(parts, s.Slice(off, off+size))
		off += size
	}
	if n > 0 {
		parts = append(parts, s.Slice(off, len(text)))
	}
	return parts
}

// Fields splits s around runs of white space, as strings.Fields does.
func (s *String[H]) Fields() []*String[H] {
	return s.FieldsFunc(unicode.IsSpace)
}

// FieldsFunc splits s at each run of characters satisfying f.
func (s *String[H]) FieldsFunc(f func(rune) bool) []*String[H] {
	text := s.AsText()
	var parts []*String[H]
	start := -1
	for i, r := range text {
		if f(r) {
			if start >= 0 {
				parts = append(parts, s.Slice(start, i))
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		parts = append(parts, s.Slice(start, len(text)))
	}
	return parts
}

// trimmed slices s to what remains after trimming with left and right.
func (s *String[H]) trimmed(left, right func(string) string) *String[H] {
	text := s.AsText()
	rest := left(text)
	from := len(text) - len(rest)
	return s.Slice(from, from+len(right(rest)))
}

// TrimSpace returns s without leading and trailing white space.
func (s *String[H]) TrimSpace() *String[H] {
	return s.TrimFunc(unicode.IsSpace)
}

// Trim returns s without leading and trailing characters in cutset.
func (s *String[H]) Trim(cutset string) *String[H] {
	return s.trimmed(
		func(t string) string { return strings.TrimLeft(t, cutset) },
		func(t string) string { return strings.TrimRight(t, cutset) },
	)
}

// TrimFunc returns s without leading and trailing characters satisfying f.
func (s *String[H]) TrimFunc(f func(rune) bool) *String[H] {
	return s.trimmed(
		func(t string) string { return strings.TrimLeftFunc(t, f) },
		func(t string) string { return strings.TrimRightFunc(t, f) },
	)
}

// TrimPrefix returns s without prefix, or a clone of s.
func (s *String[H]) TrimPrefix(prefix string) *String[H] {
	r, _ := s.CutPrefix(prefix)
	return r
}

// TrimSuffix returns s without suffix, or a clone of s.
func (s *String[H]) TrimSuffix(suffix string) *String[H] {
	r, _ := s.CutSuffix(suffix)
	return r
}
