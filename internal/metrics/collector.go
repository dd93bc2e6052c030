// Package metrics exports storage and string counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/imstr/internal/imstr"
	"github.com/dshills/imstr/internal/storage"
)

const namespace = "imstr"

// Collector implements prometheus.Collector over the process-wide buffer
// and string counters. Values are read on each scrape.
type Collector struct {
	allocs      *prometheus.Desc
	releases    *prometheus.Desc
	grows       *prometheus.Desc
	poolGets    *prometheus.Desc
	poolMisses  *prometheus.Desc
	poolHitRate *prometheus.Desc
	liveBuffers *prometheus.Desc
	liveBytes   *prometheus.Desc

	inPlace *prometheus.Desc
	forks   *prometheus.Desc
	clones  *prometheus.Desc
	slices  *prometheus.Desc
}

func desc(subsystem, name, help string) *prometheus.Desc {
	return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, nil, nil)
}

// NewCollector creates a collector.
func NewCollector() *Collector {
	return &Collector{
		allocs:      desc("storage", "buffers_allocated_total", "Total number of buffers created."),
		releases:    desc("storage", "buffers_released_total", "Total number of buffers released by their last reference."),
		grows:       desc("storage", "buffer_grows_total", "Total number of times a buffer moved to a larger allocation."),
		poolGets:    desc("storage", "pool_gets_total", "Total number of slices requested from the size-class pools."),
		poolMisses:  desc("storage", "pool_misses_total", "Total number of pool requests that had to allocate."),
		poolHitRate: desc("storage", "pool_hit_ratio", "Fraction of pool requests served without allocating."),
		liveBuffers: desc("storage", "live_buffers", "Number of buffers currently referenced."),
		liveBytes:   desc("storage", "live_bytes", "Capacity in bytes of buffers currently referenced."),

		inPlace: desc("string", "writes_in_place_total", "Total number of writes applied to a uniquely held buffer."),
		forks:   desc("string", "writes_forked_total", "Total number of writes that first copied a shared view."),
		clones:  desc("string", "clones_total", "Total number of Clone calls."),
		slices:  desc("string", "slices_total", "Total number of zero-copy slices taken."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.allocs, c.releases, c.grows, c.poolGets, c.poolMisses, c.poolHitRate,
		c.liveBuffers, c.liveBytes, c.inPlace, c.forks, c.clones, c.slices,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := storage.ReadMetrics()
	s := imstr.ReadStats()

	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}

	counter(c.allocs, m.Allocs)
	counter(c.releases, m.Releases)
	counter(c.grows, m.Grows)
	counter(c.poolGets, m.PoolGets)
	counter(c.poolMisses, m.PoolMisses)
	gauge(c.poolHitRate, m.PoolHitRate())
	gauge(c.liveBuffers, float64(m.LiveBuffers))
	gauge(c.liveBytes, float64(m.LiveBytes))

	counter(c.inPlace, s.InPlace)
	counter(c.forks, s.Forks)
	counter(c.clones, s.Clones)
	counter(c.slices, s.Slices)
}

// Register registers a new Collector with reg.
func Register(reg prometheus.Registerer) error {
	return reg.Register(NewCollector())
}

// Handler returns an HTTP handler serving reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
