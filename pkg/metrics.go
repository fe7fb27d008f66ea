package cache

// metrics.go is a thin abstraction over Prometheus so the cache can be
// used with or without metrics. When the caller passes a
// *prometheus.Registry via WithMetrics, aggregate counters/gauges are
// registered against it; otherwise a no-op sink is used and the hot
// path does not pay for metric updates.
//
// Metrics are aggregated across shards, never labeled by shard: shard
// ids are an arbitrary caller-supplied token with no known cardinality
// bound, so a "shard" label would let a caller's shard space turn into
// an unbounded Prometheus series set. Per-shard visibility belongs to
// Cache.Stats(), which a caller can sample and re-export under whatever
// cardinality policy fits their own shard space.
//
// © 2025 streamcache authors. MIT License.

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metricsSink is an internal interface abstracting away the concrete
// backend (Prometheus vs noop). Cache only knows about these methods.
type metricsSink interface {
	incGetHit()
	incGetMiss()
	incPut()
	incEvicted()
	setBytes(v int64)
	setSegments(v int64)
}

type noopMetrics struct{}

func (noopMetrics) incGetHit()        {}
func (noopMetrics) incGetMiss()       {}
func (noopMetrics) incPut()           {}
func (noopMetrics) incEvicted()       {}
func (noopMetrics) setBytes(int64)    {}
func (noopMetrics) setSegments(int64) {}

type promMetrics struct {
	getHits       prometheus.Counter
	getMisses     prometheus.Counter
	puts          prometheus.Counter
	segsEvicted   prometheus.Counter
	bytesGauge    prometheus.Gauge
	segmentsGauge prometheus.Gauge
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	pm := &promMetrics{
		getHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamcache",
			Name:      "get_hits_total",
			Help:      "Number of GetRecords calls that returned at least one record.",
		}),
		getMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamcache",
			Name:      "get_misses_total",
			Help:      "Number of GetRecords calls that returned no records.",
		}),
		puts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamcache",
			Name:      "puts_total",
			Help:      "Number of PutRecords calls that inserted a segment.",
		}),
		segsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamcache",
			Name:      "segments_evicted_total",
			Help:      "Number of segments evicted to satisfy the size bound.",
		}),
		bytesGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "streamcache",
			Name:      "bytes",
			Help:      "Total bytes currently held across all shards.",
		}),
		segmentsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "streamcache",
			Name:      "segments",
			Help:      "Total number of segments currently held across all shards.",
		}),
	}
	reg.MustRegister(pm.getHits, pm.getMisses, pm.puts, pm.segsEvicted, pm.bytesGauge, pm.segmentsGauge)
	return pm
}

func (m *promMetrics) incGetHit()  { m.getHits.Inc() }
func (m *promMetrics) incGetMiss() { m.getMisses.Inc() }
func (m *promMetrics) incPut()     { m.puts.Inc() }
func (m *promMetrics) incEvicted() { m.segsEvicted.Inc() }
func (m *promMetrics) setBytes(v int64) {
	m.bytesGauge.Set(float64(v))
}
func (m *promMetrics) setSegments(v int64) {
	m.segmentsGauge.Set(float64(v))
}

func newMetricsSink(reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg)
}
