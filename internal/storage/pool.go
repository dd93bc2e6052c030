package storage

import (
	"sync"
	"sync/atomic"
)

// Pool tier sizes. Requests above the largest tier are allocated directly.
const (
	Size32   = 1 << 5  // 32 bytes
	Size512  = 1 << 9  // 512 bytes
	Size4K   = 1 << 12 // 4 KB
	Size16K  = 1 << 14 // 16 KB
	Size64K  = 1 << 16 // 64 KB
	Size256K = 1 << 18 // 256 KB
	Size1M   = 1 << 20 // 1 MB
	Size4M   = 1 << 22 // 4 MB
	Size8M   = 1 << 23 // 8 MB
)

// tier is one fixed-capacity pool.
type tier struct {
	size int
	pool sync.Pool
}

var tiers = newTiers(Size32, Size512, Size4K, Size16K, Size64K, Size256K, Size1M, Size4M, Size8M)

func newTiers(sizes ...int) []*tier {
	out := make([]*tier, len(sizes))
	for i, size := range sizes {
		t := &tier{size: size}
		t.pool.New = func() any {
			counters.poolMisses.Add(1)
			b := make([]byte, t.size)
			return &b
		}
		out[i] = t
	}
	return out
}

// pooling controls whether Alloc draws from the tier pools.
var pooling atomic.Bool

func init() {
	pooling.Store(true)
}

// SetPooling enables or disables the tier pools for future allocations.
// Buffers already handed out keep their original release behavior.
func SetPooling(enabled bool) {
	pooling.Store(enabled)
}

// PoolingEnabled reports whether Alloc currently draws from the tier pools.
func PoolingEnabled() bool {
	return pooling.Load()
}

// tierFor returns the smallest tier that holds size bytes, or nil.
func tierFor(size int) *tier {
	for _, t := range tiers {
		if size <= t.size {
			return t
		}
	}
	return nil
}

// alloc returns a slice of length size. The capacity is the tier size, or
// exactly size when the request exceeds the largest tier.
func alloc(size int) []byte {
	t := tierFor(size)
	if t == nil {
		return make([]byte, size)
	}
	counters.poolGets.Add(1)
	b := t.pool.Get().(*[]byte)
	return (*b)[:size]
}

// free returns a slice to the tier matching its capacity.
// Slices whose capacity is not a tier size are left to the GC.
func free(buf []byte) {
	if buf == nil {
		return
	}
	t := tierFor(cap(buf))
	if t == nil || t.size != cap(buf) {
		return
	}
	buf = buf[:cap(buf)]
	t.pool.Put(&buf)
}
