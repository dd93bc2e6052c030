package storage

import (
	"sync/atomic"

	"github.com/dshills/imstr/internal/logging"
)

// counters holds the process-wide allocation counters.
var counters struct {
	allocs      atomic.Uint64
	releases    atomic.Uint64
	grows       atomic.Uint64
	poolGets    atomic.Uint64
	poolMisses  atomic.Uint64
	liveBuffers atomic.Int64
	liveBytes   atomic.Int64
}

// Metrics is a point-in-time snapshot of buffer allocation activity.
type Metrics struct {
	// Allocs is the number of Buffers created.
	Allocs uint64
	// Releases is the number of Buffers released by a last Drop.
	Releases uint64
	// Grows is the number of times a Buffer moved to a larger allocation.
	Grows uint64
	// PoolGets is the number of slices requested from the tier pools.
	PoolGets uint64
	// PoolMisses is the number of pool requests that had to allocate.
	PoolMisses uint64
	// LiveBuffers is Allocs minus Releases.
	LiveBuffers int64
	// LiveBytes is the total capacity held by live Buffers.
	LiveBytes int64
}

// ReadMetrics returns the current allocation counters.
func ReadMetrics() Metrics {
	return Metrics{
		Allocs:      counters.allocs.Load(),
		Releases:    counters.releases.Load(),
		Grows:       counters.grows.Load(),
		PoolGets:    counters.poolGets.Load(),
		PoolMisses:  counters.poolMisses.Load(),
		LiveBuffers: counters.liveBuffers.Load(),
		LiveBytes:   counters.liveBytes.Load(),
	}
}

// PoolHitRate returns the fraction of pool requests served without allocating.
func (m Metrics) PoolHitRate() float64 {
	if m.PoolGets == 0 {
		return 0
	}
	hits := m.PoolGets - min(m.PoolMisses, m.PoolGets)
	return float64(hits) / float64(m.PoolGets)
}

// Sub returns the counter deltas from prev to m.
// Live gauges are reported as differences as well.
func (m Metrics) Sub(prev Metrics) Metrics {
	return Metrics{
		Allocs:      m.Allocs - prev.Allocs,
		Releases:    m.Releases - prev.Releases,
		Grows:       m.Grows - prev.Grows,
		PoolGets:    m.PoolGets - prev.PoolGets,
		PoolMisses:  m.PoolMisses - prev.PoolMisses,
		LiveBuffers: m.LiveBuffers - prev.LiveBuffers,
		LiveBytes:   m.LiveBytes - prev.LiveBytes,
	}
}

var logger atomic.Pointer[logging.Logger]

// SetLogger sets the logger used for failures on the release path,
// where no error can be returned to a caller. Until it is called the
// process-wide logging.Default is used.
func SetLogger(l *logging.Logger) {
	if l == nil {
		l = logging.Nop()
	}
	logger.Store(l.WithComponent("storage"))
}

func currentLogger() *logging.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return logging.Default().WithComponent("storage")
}
