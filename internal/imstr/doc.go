// Package imstr provides a UTF-8 string value with O(1) clone and O(1)
// sub-range slicing that can still be mutated like a growable string.
//
// A String is a handle to a reference-counted storage.Buffer plus a byte
// range into it. Clones and slices share the buffer. Mutations use
// copy-on-write: a String that is the only owner of its buffer and covers all
// of it is edited in place; any other String first copies just its own bytes
// into a fresh buffer. Other Strings sharing the old buffer never observe the
// change.
//
// Every String is valid UTF-8 at all times, and offsets that would split a
// multi-byte encoding are rejected with ErrNotCharBoundary.
//
// The sharing strategy is a type parameter:
//
//	Shared = String[storage.Atomic] // clone and release from any goroutine
//	Local  = String[storage.Local]  // single goroutine, cheaper counting
//	Owned  = String[storage.Cloned] // no sharing, every clone copies
//
// Basic usage:
//
//	s := imstr.FromString[storage.Atomic]("Hello, World")
//	s.PushStr("!")             // in place, s owns the whole buffer
//	hello := s.Slice(0, 5)     // "Hello", shares the buffer
//	hello.PushStr("!")         // forks: hello gets its own "Hello!"
//	fmt.Println(s.AsText())    // "Hello, World!"
//	hello.Release()
//	s.Release()
//
// A *String is the value. Copying a String struct by value is detected and
// panics, as with strings.Builder. Release returns the String's share of the
// buffer; pooled buffers go back to their pool when the last share is gone.
// A String that is never released is reclaimed by the garbage collector.
//
// Different Strings may be read and released concurrently when they use the
// Atomic strategy. A single *String must not be used by another goroutine
// while it is being mutated.
package imstr
