// Package metrics exposes Prometheus collectors for culling runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blockcull"

// Metrics holds the collectors for one process. Each instance owns its
// registry so several can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	ChunksCulled   prometheus.Counter
	BlocksOccupied prometheus.Counter
	BlocksExposed  prometheus.Counter
	ChunkErrors    prometheus.Counter
	InFlight       prometheus.Gauge
	CullDuration   prometheus.Histogram
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ChunksCulled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_culled_total",
			Help:      "Chunks whose exposed blocks were computed.",
		}),
		BlocksOccupied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_occupied_total",
			Help:      "Opaque blocks seen in culled chunks.",
		}),
		BlocksExposed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_exposed_total",
			Help:      "Blocks with at least one uncovered face.",
		}),
		ChunkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunk_errors_total",
			Help:      "Chunk passes that failed.",
		}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chunks_in_flight",
			Help:      "Chunk passes currently running.",
		}),
		CullDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunk_cull_duration_seconds",
			Help:      "Time spent culling a single chunk.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}

	m.registry.MustRegister(
		m.ChunksCulled,
		m.BlocksOccupied,
		m.BlocksExposed,
		m.ChunkErrors,
		m.InFlight,
		m.CullDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveChunk records one successful chunk pass.
func (m *Metrics) ObserveChunk(occupied, exposed int, took time.Duration) {
	m.ChunksCulled.Inc()
	m.BlocksOccupied.Add(float64(occupied))
	m.BlocksExposed.Add(float64(exposed))
	m.CullDuration.Observe(took.Seconds())
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
