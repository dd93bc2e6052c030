package imstr

import (
	"io"
	"strings"
	"unicode/utf8"
	"unsafe"

	"github.com/dshills/imstr/internal/storage"
)

// writable returns a buffer that s alone owns and covers completely.
//
// When s already owns all of its buffer that buffer is returned as is.
// Otherwise the first keep bytes of s are copied into a new buffer with room
// for extra more, s switches to it, and the old share is dropped. Bytes of
// the old buffer outside s's range are never copied.
func (s *String[H]) writable(keep, extra int) *storage.Buffer {
	if buf, ok := s.uniqueWhole(); ok {
		stats.inPlace.Add(1)
		return buf
	}
	stats.forks.Add(1)

	buf := storage.Alloc(0, keep+max(extra, 0))
	buf.Append(s.bytes()[:keep])

	old := s.h
	var zero H
	s.h = zero.Adopt(buf)
	s.start, s.end = 0, buf.Len()
	old.Drop()
	return buf
}

// detach returns text, or a copy of it if it points into s's buffer.
// Writes may move or overwrite those bytes before they are read.
func (s *String[H]) detach(text string) string {
	if len(text) == 0 {
		return text
	}
	data := s.h.View()
	if cap(data) == 0 {
		return text
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(data)))
	p := uintptr(unsafe.Pointer(unsafe.StringData(text)))
	if p >= base && p < base+uintptr(cap(data)) {
		return strings.Clone(text)
	}
	return text
}

// PushStr appends text. It panics if text is not valid UTF-8.
func (s *String[H]) PushStr(text string) {
	must(s.TryPushStr(text))
}

// TryPushStr appends text, or returns an error if it is not valid UTF-8.
func (s *String[H]) TryPushStr(text string) error {
	s.copyCheck()
	if err := validateString("PushStr", text); err != nil {
		return err
	}
	s.pushStr(text)
	return nil
}

func (s *String[H]) pushStr(text string) {
	if len(text) == 0 {
		return
	}
	text = s.detach(text)
	buf := s.writable(s.Len(), len(text))
	buf.AppendString(text)
	s.end = buf.Len()
}

// PushBytes appends p. It panics if p is not valid UTF-8.
func (s *String[H]) PushBytes(p []byte) {
	must(s.TryPushBytes(p))
}

// TryPushBytes appends p, or returns an error if it is not valid UTF-8.
func (s *String[H]) TryPushBytes(p []byte) error {
	s.copyCheck()
	if err := validate("PushBytes", p); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	s.pushStr(unsafe.String(unsafe.SliceData(p), len(p)))
	return nil
}

// Push appends r. Invalid runes are written as U+FFFD.
func (s *String[H]) Push(r rune) {
	s.copyCheck()
	var tmp [utf8.UTFMax]byte
	n := utf8.EncodeRune(tmp[:], r)
	buf := s.writable(s.Len(), n)
	buf.Append(tmp[:n])
	s.end = buf.Len()
}

// Concat returns a new string holding s followed by text.
// s is not modified.
func (s *String[H]) Concat(text string) *String[H] {
	c := s.Clone()
	c.PushStr(text)
	return c
}

// InsertStr inserts text at offset at.
// It panics if at is out of bounds or not a character boundary, or if text
// is not valid UTF-8.
func (s *String[H]) InsertStr(at int, text string) {
	must(s.TryInsertStr(at, text))
}

// TryInsertStr is like InsertStr but returns an error instead of panicking.
func (s *String[H]) TryInsertStr(at int, text string) error {
	return s.TryReplaceRange(at, at, text)
}

// Insert inserts r at offset at. Invalid runes are written as U+FFFD.
func (s *String[H]) Insert(at int, r rune) {
	must(s.TryInsert(at, r))
}

// TryInsert is like Insert but returns an error instead of panicking.
func (s *String[H]) TryInsert(at int, r rune) error {
	var tmp [utf8.UTFMax]byte
	n := utf8.EncodeRune(tmp[:], r)
	return s.TryReplaceRange(at, at, string(tmp[:n]))
}

// ReplaceRange replaces the bytes [from, to) with text.
func (s *String[H]) ReplaceRange(from, to int, text string) {
	must(s.TryReplaceRange(from, to, text))
}

// TryReplaceRange is like ReplaceRange but returns an error instead of
// panicking. On error s is unchanged.
func (s *String[H]) TryReplaceRange(from, to int, text string) error {
	s.copyCheck()
	if err := checkRange("ReplaceRange", s.h.View(), s.start, s.Len(), from, to); err != nil {
		return err
	}
	if err := validateString("ReplaceRange", text); err != nil {
		return err
	}
	if from == to && len(text) == 0 {
		return nil
	}
	text = s.detach(text)
	buf := s.writable(s.Len(), len(text)-(to-from))
	buf.Splice(from, to, text)
	s.end = buf.Len()
	return nil
}

// Truncate shortens s to n bytes.
// It panics if n is greater than Len or not a character boundary.
func (s *String[H]) Truncate(n int) {
	must(s.TryTruncate(n))
}

// TryTruncate is like Truncate but returns an error instead of panicking.
func (s *String[H]) TryTruncate(n int) error {
	s.copyCheck()
	if err := checkOffset("Truncate", s.h.View(), s.start, s.Len(), n); err != nil {
		return err
	}
	s.truncate(n)
	return nil
}

func (s *String[H]) truncate(n int) {
	if n == s.Len() {
		return
	}
	buf := s.writable(n, 0)
	buf.Truncate(n)
	s.end = n
}

// Clear empties s. An unshared buffer keeps its capacity.
func (s *String[H]) Clear() {
	s.copyCheck()
	s.truncate(0)
}

// Pop removes and returns the last character. It returns false if s is empty.
func (s *String[H]) Pop() (rune, bool) {
	s.copyCheck()
	if s.IsEmpty() {
		return utf8.RuneError, false
	}
	r, size := utf8.DecodeLastRune(s.bytes())
	s.truncate(s.Len() - size)
	return r, true
}

// Remove removes and returns the character at offset at.
func (s *String[H]) Remove(at int) rune {
	r, err := s.TryRemove(at)
	must(err)
	return r
}

// TryRemove is like Remove but returns an error instead of panicking.
func (s *String[H]) TryRemove(at int) (rune, error) {
	s.copyCheck()
	r, size, err := s.RuneAt(at)
	if err != nil {
		if re, ok := err.(*RangeError); ok {
			re.Op = "Remove"
		}
		return utf8.RuneError, err
	}
	buf := s.writable(s.Len(), 0)
	buf.Splice(at, at+size, "")
	s.end = buf.Len()
	return r, nil
}

// Retain keeps only the characters for which keep returns true.
func (s *String[H]) Retain(keep func(rune) bool) {
	s.copyCheck()
	text := s.AsText()
	drop := -1
	for i, r := range text {
		if !keep(r) {
			drop = i
			break
		}
	}
	if drop < 0 {
		return
	}

	buf := s.writable(s.Len(), 0)
	data := buf.Bytes()
	_, size := utf8.DecodeRune(data[drop:])
	w := drop
	for i := drop + size; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if keep(r) {
			copy(data[w:], data[i:i+size])
			w += size
		}
		i += size
	}
	buf.Truncate(w)
	s.end = w
}

// SplitOff splits s at at: s keeps [0, at) and the returned string holds
// the rest. No bytes are copied; both share the buffer.
func (s *String[H]) SplitOff(at int) *String[H] {
	tail, err := s.TrySplitOff(at)
	must(err)
	return tail
}

// TrySplitOff is like SplitOff but returns an error instead of panicking.
func (s *String[H]) TrySplitOff(at int) (*String[H], error) {
	s.copyCheck()
	n := s.Len()
	if err := checkOffset("SplitOff", s.h.View(), s.start, n, at); err != nil {
		return nil, err
	}
	tail := s.sub(at, n)
	s.end = s.start + at
	return tail, nil
}

// setText replaces the entire content of s with text, which must be valid
// UTF-8 and must not alias s's buffer.
func (s *String[H]) setText(text string) {
	buf := s.writable(0, len(text))
	buf.Truncate(0)
	buf.AppendString(text)
	s.end = buf.Len()
}

// UnmarshalText implements encoding.TextUnmarshaler. The text is copied.
func (s *String[H]) UnmarshalText(text []byte) error {
	s.copyCheck()
	if err := validate("UnmarshalText", text); err != nil {
		return err
	}
	s.setText(string(text))
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (s *String[H]) MarshalText() ([]byte, error) {
	return s.Bytes(), nil
}

const minRead = 512

// ReadFrom appends everything read from r until EOF. If r returns an error
// or the data is not valid UTF-8, nothing is appended.
func (s *String[H]) ReadFrom(r io.Reader) (int64, error) {
	s.copyCheck()
	n0 := s.Len()
	buf := s.writable(n0, minRead)

	var chunk [32 * 1024]byte
	var total int64
	for {
		m, err := r.Read(chunk[:])
		if m > 0 {
			buf.Append(chunk[:m])
			total += int64(m)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			buf.Truncate(n0)
			s.end = n0
			return total, err
		}
	}

	if err := validate("ReadFrom", buf.Bytes()[n0:]); err != nil {
		buf.Truncate(n0)
		s.end = n0
		return total, err
	}
	s.end = buf.Len()
	return total, nil
}
