package storage

// Local is a handle with a plain, non-atomic count.
// All handles to one buffer must be used from a single goroutine.
type Local struct {
	box *localBox
}

type localBox struct {
	refs int64
	buf  *Buffer
}

// Adopt wraps buf in a new handle with a count of 1.
func (Local) Adopt(buf *Buffer) Local {
	if buf == nil {
		return Local{}
	}
	return Local{box: &localBox{refs: 1, buf: buf}}
}

// Clone increments the count and returns another handle to the buffer.
func (l Local) Clone() Local {
	if l.box == nil {
		return l
	}
	l.box.refs++
	return l
}

// Drop decrements the count and releases the buffer at zero.
func (l Local) Drop() {
	if l.box == nil {
		return
	}
	l.box.refs--
	switch {
	case l.box.refs == 0:
		l.box.buf.free()
	case l.box.refs < 0:
		panic(ErrDoubleRelease)
	}
}

// TryUniqueMut returns the buffer iff this is the only handle to it.
func (l Local) TryUniqueMut() (*Buffer, bool) {
	if l.box == nil || l.box.refs != 1 || l.box.buf.readOnly {
		return nil, false
	}
	return l.box.buf, true
}

// View returns the buffer contents.
func (l Local) View() []byte {
	if l.box == nil {
		return nil
	}
	return l.box.buf.data
}

// Count returns the number of live handles.
func (l Local) Count() int {
	if l.box == nil {
		return 0
	}
	return int(l.box.refs)
}

// Valid reports whether the handle refers to a buffer.
func (l Local) Valid() bool {
	return l.box != nil
}

// Same reports whether both handles refer to the same buffer.
func (l Local) Same(other Local) bool {
	return l.box != nil && l.box == other.box
}
