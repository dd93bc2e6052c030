package imstr

import (
	"io"
	"unicode/utf8"

	"github.com/dshills/imstr/internal/storage"
)

// Builder accumulates bytes into a pooled buffer and hands the buffer to a
// String on Build without copying.
//
// Writes are not validated individually, so a multi-byte character may be
// split across writes. Build checks the whole content once.
// The zero value is ready to use.
type Builder[H storage.Handle[H]] struct {
	buf *storage.Buffer
}

// NewBuilder returns a builder with room for size bytes.
func NewBuilder[H storage.Handle[H]](size int) *Builder[H] {
	b := &Builder[H]{}
	b.Grow(size)
	return b
}

func (b *Builder[H]) buffer() *storage.Buffer {
	if b.buf == nil {
		b.buf = storage.Alloc(0, 0)
	}
	return b.buf
}

// Grow ensures room for another n bytes.
func (b *Builder[H]) Grow(n int) {
	if n <= 0 {
		return
	}
	if b.buf == nil {
		b.buf = storage.Alloc(0, n)
		return
	}
	b.buf.Grow(n)
}

// Len returns the number of bytes written.
func (b *Builder[H]) Len() int {
	if b.buf == nil {
		return 0
	}
	return b.buf.Len()
}

// Write implements io.Writer.
func (b *Builder[H]) Write(p []byte) (int, error) {
	b.buffer().Append(p)
	return len(p), nil
}

// WriteString implements io.StringWriter.
func (b *Builder[H]) WriteString(s string) (int, error) {
	b.buffer().AppendString(s)
	return len(s), nil
}

// WriteByte implements io.ByteWriter.
func (b *Builder[H]) WriteByte(c byte) error {
	b.buffer().Append([]byte{c})
	return nil
}

// WriteRune appends the UTF-8 encoding of r.
func (b *Builder[H]) WriteRune(r rune) (int, error) {
	var tmp [utf8.UTFMax]byte
	n := utf8.EncodeRune(tmp[:], r)
	b.buffer().Append(tmp[:n])
	return n, nil
}

// ReadFrom implements io.ReaderFrom.
func (b *Builder[H]) ReadFrom(r io.Reader) (int64, error) {
	buf := b.buffer()
	var chunk [32 * 1024]byte
	var total int64
	for {
		n, err := r.Read(chunk[:])
		if n > 0 {
			buf.Append(chunk[:n])
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Reset discards the accumulated bytes.
func (b *Builder[H]) Reset() {
	if b.buf != nil {
		b.buf.Discard()
		b.buf = nil
	}
}

// Build returns the accumulated bytes as a String and resets the builder.
// If the content is not valid UTF-8 the bytes are discarded and an
// *EncodingError is returned.
func (b *Builder[H]) Build() (*String[H], error) {
	if b.buf == nil {
		return New[H](), nil
	}
	buf := b.buf
	b.buf = nil
	if err := validate("Build", buf.Bytes()); err != nil {
		buf.Discard()
		return nil, err
	}
	var zero H
	return wrap(zero.Adopt(buf), 0, buf.Len()), nil
}
