package imstr

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf16"
	"unicode/utf8"
	"unsafe"

	"github.com/dshills/imstr/internal/storage"
)

// String is a UTF-8 string view over a shared buffer.
//
// The zero value is an empty string ready to use. A String must not be
// copied by value after first use; pass *String and use Clone to share.
type String[H storage.Handle[H]] struct {
	addr  *String[H] // self pointer for detecting copies by value
	h     H
	start int
	end   int
}

// Strategy aliases.
type (
	// Shared strings may be cloned and released from any goroutine.
	Shared = String[storage.Atomic]

	// Local strings must stay on one goroutine.
	Local = String[storage.Local]

	// Owned strings never share: Clone and Slice copy.
	Owned = String[storage.Cloned]
)

// NewShared returns a Shared string holding a copy of text.
func NewShared(text string) *Shared { return FromString[storage.Atomic](text) }

// NewLocal returns a Local string holding a copy of text.
func NewLocal(text string) *Local { return FromString[storage.Local](text) }

// NewOwned returns an Owned string holding a copy of text.
func NewOwned(text string) *Owned { return FromString[storage.Cloned](text) }

func (s *String[H]) copyCheck() {
	if s.addr == nil {
		s.addr = s
	} else if s.addr != s {
		panic("imstr: illegal use of non-zero String copied by value")
	}
}

// wrap returns a new String that takes over h.
func wrap[H storage.Handle[H]](h H, start, end int) *String[H] {
	s := &String[H]{h: h, start: start, end: end}
	s.addr = s
	return s
}

// New returns an empty string. No buffer is allocated until the first write.
func New[H storage.Handle[H]]() *String[H] {
	s := &String[H]{}
	s.addr = s
	return s
}

// WithCapacity returns an empty string whose buffer holds n bytes before
// it needs to grow.
func WithCapacity[H storage.Handle[H]](n int) *String[H] {
	var zero H
	return wrap(zero.Adopt(storage.Alloc(0, n)), 0, 0)
}

// FromString returns a string holding a copy of text.
// It panics if text is not valid UTF-8.
func FromString[H storage.Handle[H]](text string) *String[H] {
	s, err := TryFromString[H](text)
	must(err)
	return s
}

// TryFromString is like FromString but returns an error for invalid UTF-8.
func TryFromString[H storage.Handle[H]](text string) (*String[H], error) {
	if err := validateString("FromString", text); err != nil {
		return nil, err
	}
	if len(text) == 0 {
		return New[H](), nil
	}
	buf := storage.Alloc(0, len(text))
	buf.AppendString(text)
	var zero H
	return wrap(zero.Adopt(buf), 0, len(text)), nil
}

// FromBytes returns a string holding a copy of p.
func FromBytes[H storage.Handle[H]](p []byte) (*String[H], error) {
	if err := validate("FromBytes", p); err != nil {
		return nil, err
	}
	if len(p) == 0 {
		return New[H](), nil
	}
	buf := storage.Alloc(0, len(p))
	buf.Append(p)
	var zero H
	return wrap(zero.Adopt(buf), 0, len(p)), nil
}

// AdoptBytes takes ownership of p without copying it.
// The caller must not modify p afterwards.
func AdoptBytes[H storage.Handle[H]](p []byte) (*String[H], error) {
	return Adopt[H](storage.NewBuffer(p))
}

// Adopt takes ownership of buf without copying it. The whole buffer becomes
// the string. On error buf has already been released.
func Adopt[H storage.Handle[H]](buf *storage.Buffer) (*String[H], error) {
	var zero H
	h := zero.Adopt(buf)
	data := h.View()
	if err := validate("Adopt", data); err != nil {
		h.Drop()
		return nil, err
	}
	return wrap(h, 0, len(data)), nil
}

// FromUTF8Lossy returns a string holding p with each run of invalid bytes
// replaced by U+FFFD.
func FromUTF8Lossy[H storage.Handle[H]](p []byte) *String[H] {
	if utf8.Valid(p) {
		s, _ := FromBytes[H](p)
		return s
	}
	s, _ := AdoptBytes[H](bytes.ToValidUTF8(p, []byte(string(utf8.RuneError))))
	return s
}

// FromUTF16 decodes UTF-16 code units. Unpaired surrogates are rejected;
// the EncodingError offset is the index of the offending unit.
func FromUTF16[H storage.Handle[H]](units []uint16) (*String[H], error) {
	out := make([]byte, 0, len(units))
	for i := 0; i < len(units); i++ {
		r := rune(units[i])
		if utf16.IsSurrogate(r) {
			if i+1 < len(units) {
				r = utf16.DecodeRune(r, rune(units[i+1]))
			} else {
				r = utf8.RuneError
			}
			if r == utf8.RuneError {
				return nil, &EncodingError{Op: "FromUTF16", Offset: i, Err: ErrInvalidEncoding}
			}
			i++
		}
		out = utf8.AppendRune(out, r)
	}
	return AdoptBytes[H](out)
}

// FromReader reads r to EOF into a new string.
func FromReader[H storage.Handle[H]](r io.Reader) (*String[H], error) {
	var b Builder[H]
	if _, err := b.ReadFrom(r); err != nil {
		b.Reset()
		return nil, err
	}
	return b.Build()
}

// FromFile maps the file at path and adopts it as a read-only string.
// Slices of the result share the mapping; mutations copy.
func FromFile[H storage.Handle[H]](path string) (*String[H], error) {
	buf, err := storage.MapFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Adopt[H](buf)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return s, nil
}

// bytes returns the view's bytes. The slice aliases the buffer.
func (s *String[H]) bytes() []byte {
	if !s.h.Valid() {
		return nil
	}
	return s.h.View()[s.start:s.end]
}

// Len returns the length of the string in bytes.
func (s *String[H]) Len() int {
	return s.end - s.start
}

// IsEmpty reports whether the string has length zero.
func (s *String[H]) IsEmpty() bool {
	return s.end == s.start
}

// Cap returns the number of bytes the string can hold before a write must
// allocate. It is Len unless the string owns all of its buffer.
func (s *String[H]) Cap() int {
	if buf, ok := s.uniqueWhole(); ok {
		return buf.Cap()
	}
	return s.Len()
}

// AsText returns the string's content without copying.
//
// The result aliases the buffer. It stays valid until the next mutation or
// Release of s; use String for a copy that outlives either.
func (s *String[H]) AsText() string {
	b := s.bytes()
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// String returns a copy of the string's content.
func (s *String[H]) String() string {
	return string(s.bytes())
}

// Bytes returns a copy of the string's content.
func (s *String[H]) Bytes() []byte {
	return bytes.Clone(s.bytes())
}

// AppendTo appends the string's content to dst.
func (s *String[H]) AppendTo(dst []byte) []byte {
	return append(dst, s.bytes()...)
}

// WriteTo writes the string's content to w.
func (s *String[H]) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.bytes())
	return int64(n), err
}

// Clone returns another string with the same content that shares the buffer.
func (s *String[H]) Clone() *String[H] {
	s.copyCheck()
	stats.clones.Add(1)
	return wrap(s.h.Clone(), s.start, s.end)
}

// Release gives up the string's share of its buffer and leaves s empty.
// Calling Release again is a no-op.
func (s *String[H]) Release() {
	s.copyCheck()
	h := s.h
	var zero H
	s.h = zero
	s.start, s.end = 0, 0
	h.Drop()
}

// RefCount returns how many handles share the string's buffer.
func (s *String[H]) RefCount() int {
	return s.h.Count()
}

// SharesStorage reports whether s and other are backed by the same buffer.
func (s *String[H]) SharesStorage(other *String[H]) bool {
	return s.h.Same(other.h)
}

// uniqueWhole returns the buffer when s is its only owner and covers all of
// it, which is the one case where writes may happen in place.
func (s *String[H]) uniqueWhole() (*storage.Buffer, bool) {
	buf, ok := s.h.TryUniqueMut()
	if !ok || s.start != 0 || s.end != buf.Len() {
		return nil, false
	}
	return buf, true
}
