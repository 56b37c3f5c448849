package analytics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports a Recorder as Prometheus metrics
type Collector struct {
	rec *Recorder

	cacheHits   *prometheus.Desc
	cacheMisses *prometheus.Desc
	failures    *prometheus.Desc
	requests    *prometheus.Desc
	latencySum  *prometheus.Desc
	latencyMin  *prometheus.Desc
	latencyMax  *prometheus.Desc
}

// NewCollector creates a collector reading from rec on every scrape
func NewCollector(rec *Recorder) *Collector {
	backend := []string{"backend"}
	return &Collector{
		rec:         rec,
		cacheHits:   prometheus.NewDesc("lingochain_cache_hits_total", "Translations served from the cache", nil, nil),
		cacheMisses: prometheus.NewDesc("lingochain_cache_misses_total", "Translations not found in the cache", nil, nil),
		failures:    prometheus.NewDesc("lingochain_all_backends_failed_total", "Calls where every backend failed and the input was returned", nil, nil),
		requests:    prometheus.NewDesc("lingochain_backend_requests_total", "Backend attempts with a latency sample", backend, nil),
		latencySum:  prometheus.NewDesc("lingochain_backend_latency_ms_total", "Sum of backend latencies in milliseconds", backend, nil),
		latencyMin:  prometheus.NewDesc("lingochain_backend_latency_ms_min", "Fastest backend attempt in milliseconds", backend, nil),
		latencyMax:  prometheus.NewDesc("lingochain_backend_latency_ms_max", "Slowest backend attempt in milliseconds", backend, nil),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cacheHits
	ch <- c.cacheMisses
	ch <- c.failures
	ch <- c.requests
	ch <- c.latencySum
	ch <- c.latencyMin
	ch <- c.latencyMax
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.rec.Snapshot()

	ch <- prometheus.MustNewConstMetric(c.cacheHits, prometheus.CounterValue, float64(snap.CacheHits))
	ch <- prometheus.MustNewConstMetric(c.cacheMisses, prometheus.CounterValue, float64(snap.CacheMisses))
	ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue, float64(snap.Failures))

	for name, stats := range snap.Latency {
		ch <- prometheus.MustNewConstMetric(c.requests, prometheus.CounterValue, float64(stats.Count), name)
		ch <- prometheus.MustNewConstMetric(c.latencySum, prometheus.CounterValue, stats.TotalMs, name)
		ch <- prometheus.MustNewConstMetric(c.latencyMin, prometheus.GaugeValue, stats.MinMs, name)
		ch <- prometheus.MustNewConstMetric(c.latencyMax, prometheus.GaugeValue, stats.MaxMs, name)
	}
}
