package storage

import "sync/atomic"

// Atomic is a handle whose count is maintained with atomic operations.
// Handles may be cloned and dropped concurrently from any goroutine.
type Atomic struct {
	box *atomicBox
}

type atomicBox struct {
	refs atomic.Int64
	buf  *Buffer
}

// Adopt wraps buf in a new handle with a count of 1.
func (Atomic) Adopt(buf *Buffer) Atomic {
	if buf == nil {
		return Atomic{}
	}
	box := &atomicBox{buf: buf}
	box.refs.Store(1)
	return Atomic{box: box}
}

// Clone increments the count and returns another handle to the buffer.
func (a Atomic) Clone() Atomic {
	if a.box == nil {
		return a
	}
	a.box.refs.Add(1)
	return a
}

// Drop decrements the count and releases the buffer at zero.
func (a Atomic) Drop() {
	if a.box == nil {
		return
	}
	switch n := a.box.refs.Add(-1); {
	case n == 0:
		a.box.buf.free()
	case n < 0:
		panic(ErrDoubleRelease)
	}
}

// TryUniqueMut returns the buffer iff this is the only handle to it.
func (a Atomic) TryUniqueMut() (*Buffer, bool) {
	if a.box == nil || a.box.refs.Load() != 1 || a.box.buf.readOnly {
		return nil, false
	}
	return a.box.buf, true
}

// View returns the buffer contents.
func (a Atomic) View() []byte {
	if a.box == nil {
		return nil
	}
	return a.box.buf.data
}

// Count returns the number of live handles.
func (a Atomic) Count() int {
	if a.box == nil {
		return 0
	}
	return int(a.box.refs.Load())
}

// Valid reports whether the handle refers to a buffer.
func (a Atomic) Valid() bool {
	return a.box != nil
}

// Same reports whether both handles refer to the same buffer.
func (a Atomic) Same(other Atomic) bool {
	return a.box != nil && a.box == other.box
}
