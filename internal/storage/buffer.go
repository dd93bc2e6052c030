package storage

import "math"

// bufferKind records where a Buffer's bytes came from, which decides how
// they are given back on release and how the Buffer grows.
type bufferKind uint8

const (
	kindHeap   bufferKind = iota // adopted or make'd, GC managed
	kindPooled                   // drawn from the tier pools
	kindMapped                   // read-only file mapping
)

// Buffer is an owned, contiguous, growable byte allocation.
//
// A Buffer is never shared directly; it is reached through a handle. Write
// methods must only be called on a Buffer obtained from TryUniqueMut or on a
// fresh Buffer that has not been adopted yet.
type Buffer struct {
	data     []byte
	kind     bufferKind
	readOnly bool
	released bool
	release  func([]byte)
}

func newBuffer(data []byte, kind bufferKind, release func([]byte)) *Buffer {
	counters.allocs.Add(1)
	counters.liveBuffers.Add(1)
	counters.liveBytes.Add(int64(cap(data)))
	return &Buffer{data: data, kind: kind, release: release}
}

// NewBuffer takes ownership of data. The Buffer is GC managed.
// The caller must not use data after the call.
func NewBuffer(data []byte) *Buffer {
	return newBuffer(data, kindHeap, nil)
}

// NewBufferWithRelease takes ownership of data and calls release with it
// once the last handle is dropped.
func NewBufferWithRelease(data []byte, release func([]byte)) *Buffer {
	return newBuffer(data, kindHeap, release)
}

// NewReadOnlyBuffer wraps data that must never be written, such as a file
// mapping. TryUniqueMut never hands it out.
func NewReadOnlyBuffer(data []byte, release func([]byte)) *Buffer {
	b := newBuffer(data, kindMapped, release)
	b.readOnly = true
	return b
}

// Alloc returns a Buffer of the given length with at least the given
// capacity. The first length bytes are unspecified and must be overwritten.
func Alloc(length, capacity int) *Buffer {
	if length < 0 || capacity < 0 {
		panic(ErrAllocationFailure)
	}
	if capacity < length {
		capacity = length
	}
	if !PoolingEnabled() {
		return newBuffer(make([]byte, length, capacity), kindHeap, nil)
	}
	if capacity == 0 {
		return newBuffer(nil, kindPooled, nil)
	}
	return newBuffer(alloc(capacity)[:length], kindPooled, nil)
}

// Bytes returns the buffer contents. The slice aliases the buffer and must
// not be written unless the Buffer came from TryUniqueMut.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Cap returns the capacity of the buffer.
func (b *Buffer) Cap() int {
	return cap(b.data)
}

// ReadOnly reports whether the buffer can never be written.
func (b *Buffer) ReadOnly() bool {
	return b.readOnly
}

// Grow ensures room for another n bytes without another allocation.
// Capacity at least doubles on each reallocation.
func (b *Buffer) Grow(n int) {
	if n < 0 {
		panic("storage: Buffer.Grow: negative count")
	}
	b.checkWritable()
	if cap(b.data)-len(b.data) >= n {
		return
	}

	length := len(b.data)
	if n > math.MaxInt-length {
		panic(ErrAllocationFailure)
	}
	need := length + n

	newCap := need
	if c := cap(b.data); c <= math.MaxInt/2 && 2*c > newCap {
		newCap = 2 * c
	}

	var grown []byte
	if b.kind == kindPooled && PoolingEnabled() {
		grown = alloc(newCap)[:length]
	} else {
		grown = make([]byte, length, newCap)
	}
	copy(grown, b.data)

	old := b.data
	b.data = grown
	counters.grows.Add(1)
	counters.liveBytes.Add(int64(cap(grown) - cap(old)))

	switch {
	case b.kind == kindPooled:
		free(old)
	case b.release != nil:
		// The original bytes are no longer referenced by this buffer.
		b.release(old)
		b.release = nil
	}
}

// Append appends p to the buffer.
func (b *Buffer) Append(p []byte) {
	b.Grow(len(p))
	b.data = append(b.data, p...)
}

// AppendString appends s to the buffer.
func (b *Buffer) AppendString(s string) {
	b.Grow(len(s))
	b.data = append(b.data, s...)
}

// Truncate discards all but the first n bytes. Capacity is kept.
func (b *Buffer) Truncate(n int) {
	b.checkWritable()
	if n < 0 || n > len(b.data) {
		panic("storage: Buffer.Truncate: out of range")
	}
	b.data = b.data[:n]
}

// Splice replaces data[from:to] with s, shifting the tail as needed.
func (b *Buffer) Splice(from, to int, s string) {
	b.checkWritable()
	oldLen := len(b.data)
	if from < 0 || from > to || to > oldLen {
		panic("storage: Buffer.Splice: out of range")
	}

	delta := len(s) - (to - from)
	switch {
	case delta > 0:
		b.Grow(delta)
		b.data = b.data[:oldLen+delta]
		copy(b.data[to+delta:], b.data[to:oldLen])
	case delta < 0:
		copy(b.data[from+len(s):], b.data[to:oldLen])
		b.data = b.data[:oldLen+delta]
	}
	copy(b.data[from:], s)
}

func (b *Buffer) checkWritable() {
	if b.readOnly {
		panic(ErrReadOnly)
	}
	if b.released {
		panic(ErrDoubleRelease)
	}
}

// Discard releases a Buffer that was never adopted by a handle.
// Adopted buffers are released by their last handle instead.
func (b *Buffer) Discard() {
	b.free()
}

// free releases the buffer's bytes. It runs exactly once per Buffer.
func (b *Buffer) free() {
	if b.released {
		panic(ErrDoubleRelease)
	}
	b.released = true

	data := b.data
	b.data = nil
	counters.releases.Add(1)
	counters.liveBuffers.Add(-1)
	counters.liveBytes.Add(-int64(cap(data)))

	if b.kind == kindPooled {
		free(data)
	}
	if b.release != nil {
		b.release(data)
		b.release = nil
	}
}
