package storage

// Cloned is a handle that never shares its buffer: Clone copies the bytes
// into a fresh allocation. Every Cloned handle is the unique owner of its
// buffer, which makes it a baseline for measuring what sharing saves.
type Cloned struct {
	buf *Buffer
}

// Adopt wraps buf in a new handle.
func (Cloned) Adopt(buf *Buffer) Cloned {
	return Cloned{buf: buf}
}

// Clone copies the buffer contents into a new buffer. O(n).
func (c Cloned) Clone() Cloned {
	if c.buf == nil {
		return c
	}
	n := len(c.buf.data)
	dup := Alloc(0, n)
	dup.Append(c.buf.data)
	return Cloned{buf: dup}
}

// Drop releases the buffer.
func (c Cloned) Drop() {
	if c.buf == nil {
		return
	}
	c.buf.free()
}

// TryUniqueMut returns the buffer unless it is read-only.
func (c Cloned) TryUniqueMut() (*Buffer, bool) {
	if c.buf == nil || c.buf.readOnly || c.buf.released {
		return nil, false
	}
	return c.buf, true
}

// View returns the buffer contents.
func (c Cloned) View() []byte {
	if c.buf == nil {
		return nil
	}
	return c.buf.data
}

// Count returns 1 for a live handle and 0 otherwise.
func (c Cloned) Count() int {
	if c.buf == nil || c.buf.released {
		return 0
	}
	return 1
}

// Valid reports whether the handle refers to a buffer.
func (c Cloned) Valid() bool {
	return c.buf != nil
}

// Same reports whether both handles refer to the same buffer.
func (c Cloned) Same(other Cloned) bool {
	return c.buf != nil && c.buf == other.buf
}
