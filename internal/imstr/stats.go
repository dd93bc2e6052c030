package imstr

import "sync/atomic"

var stats struct {
	inPlace atomic.Uint64
	forks   atomic.Uint64
	clones  atomic.Uint64
	slices  atomic.Uint64
}

// Stats counts String operations across the process.
type Stats struct {
	// InPlace is the number of writes applied to a buffer the string owned.
	InPlace uint64
	// Forks is the number of writes that first copied the string into a
	// new buffer.
	Forks uint64
	// Clones is the number of Clone calls.
	Clones uint64
	// Slices is the number of zero-copy slices taken.
	Slices uint64
}

// ReadStats returns the current operation counters.
func ReadStats() Stats {
	return Stats{
		InPlace: stats.inPlace.Load(),
		Forks:   stats.forks.Load(),
		Clones:  stats.clones.Load(),
		Slices:  stats.slices.Load(),
	}
}

// Sub returns the counter deltas from prev to s.
func (s Stats) Sub(prev Stats) Stats {
	return Stats{
		InPlace: s.InPlace - prev.InPlace,
		Forks:   s.Forks - prev.Forks,
		Clones:  s.Clones - prev.Clones,
		Slices:  s.Slices - prev.Slices,
	}
}
