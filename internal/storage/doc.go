// Package storage provides reference-counted handles to byte buffers.
//
// A Buffer is an owned, growable byte allocation. A handle is a small value
// that points at one Buffer together with a reference count. Handles are
// duplicated with Clone, released with Drop, and the Buffer is released
// exactly once when the last handle is dropped.
//
// Three sharing strategies implement the same Handle capability:
//
//   - Atomic counts with sync/atomic and may be cloned and dropped from any
//     goroutine.
//   - Local counts with a plain integer and must stay on one goroutine.
//   - Cloned never shares: Clone copies the bytes, so every handle is unique.
//
// TryUniqueMut hands out mutable access only while a handle is the sole
// owner of a writable buffer. The package never copies on its own and never
// looks at buffer content; callers decide what to do when a buffer is shared.
//
// Buffers come from one of three places:
//
//	b := storage.Alloc(0, 64)                 // tiered sync.Pool, returned on release
//	b := storage.NewBuffer(data)              // adopted bytes, GC managed
//	b, err := storage.MapFile("input.txt")    // read-only mmap, unmapped on release
//
// Basic usage:
//
//	h := storage.Atomic{}.Adopt(storage.NewBuffer([]byte("hello")))
//	h2 := h.Clone()            // count 2
//	_, ok := h.TryUniqueMut()  // false, h2 still holds the buffer
//	h2.Drop()                  // count 1
//	buf, _ := h.TryUniqueMut() // ok
//	buf.AppendString(" world")
//	h.Drop()                   // released
package storage
