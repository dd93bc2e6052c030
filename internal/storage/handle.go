package storage

import "fmt"

// Handle is the capability shared by every sharing strategy.
//
// H is the concrete handle type itself, so that Clone and Adopt return the
// same strategy they were called on. The zero value of every implementation
// is a valid empty handle: View returns nil, Count returns 0, Clone returns
// another empty handle and Drop does nothing.
//
// Adopt ignores its receiver; call it on the zero value:
//
//	var zero storage.Atomic
//	h := zero.Adopt(storage.NewBuffer(data))
type Handle[H any] interface {
	// Adopt wraps buf in a new handle with a count of 1.
	Adopt(buf *Buffer) H

	// Clone returns another handle to the same buffer. O(1).
	Clone() H

	// Drop releases this handle. The buffer is released when the last
	// handle is dropped. Each handle value must be dropped at most once.
	Drop()

	// TryUniqueMut returns the buffer for writing iff this handle is its
	// only owner and the buffer is writable. It never copies.
	TryUniqueMut() (*Buffer, bool)

	// View returns the buffer contents for reading.
	View() []byte

	// Count returns the number of live handles to the buffer.
	Count() int

	// Valid reports whether the handle refers to a buffer.
	Valid() bool

	// Same reports whether both handles refer to the same buffer.
	Same(other H) bool
}

var (
	_ Handle[Atomic] = Atomic{}
	_ Handle[Local]  = Local{}
	_ Handle[Cloned] = Cloned{}
)

// Strategy names accepted by ParseStrategy.
const (
	StrategyAtomic = "atomic"
	StrategyLocal  = "local"
	StrategyCloned = "cloned"
)

// ParseStrategy validates a strategy name. The empty string selects atomic.
func ParseStrategy(name string) (string, error) {
	switch name {
	case "", StrategyAtomic:
		return StrategyAtomic, nil
	case StrategyLocal, StrategyCloned:
		return name, nil
	}
	return "", fmt.Errorf("storage: unknown strategy %q", name)
}
