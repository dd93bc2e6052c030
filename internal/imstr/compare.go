package imstr

import (
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/dshills/imstr/internal/storage"
)

// Equal reports whether s and other hold the same bytes.
func (s *String[H]) Equal(other *String[H]) bool {
	if s.h.Same(other.h) && s.start == other.start && s.end == other.end {
		return true
	}
	return s.AsText() == other.AsText()
}

// EqualString reports whether s holds exactly text.
func (s *String[H]) EqualString(text string) bool {
	return s.AsText() == text
}

// EqualFold reports whether s and text are equal under simple Unicode
// case folding.
func (s *String[H]) EqualFold(text string) bool {
	return strings.EqualFold(s.AsText(), text)
}

// Compare returns -1, 0 or 1 ordering s and other bytewise.
func (s *String[H]) Compare(other *String[H]) int {
	return strings.Compare(s.AsText(), other.AsText())
}

// EqualAcross compares strings of different sharing strategies by content.
func EqualAcross[A storage.Handle[A], B storage.Handle[B]](a *String[A], b *String[B]) bool {
	return a.AsText() == b.AsText()
}

// Hash returns a 64-bit hash of the content. Strings with equal content hash
// equally regardless of buffer or strategy.
func (s *String[H]) Hash() uint64 {
	return xxhash.Sum64(s.bytes())
}

// Join concatenates parts with sep into a new string.
// It panics if sep is not valid UTF-8.
func Join[H storage.Handle[H]](parts []*String[H], sep string) *String[H] {
	must(validateString("Join", sep))
	switch len(parts) {
	case 0:
		return New[H]()
	case 1:
		return parts[0].Clone()
	}

	n := len(sep) * (len(parts) - 1)
	for _, p := range parts {
		n += p.Len()
	}
	out := WithCapacity[H](n)
	for i, p := range parts {
		if i > 0 {
			out.pushStr(sep)
		}
		out.pushStr(p.AsText())
	}
	return out
}
