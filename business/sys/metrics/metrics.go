// Package metrics constructs the metrics the application will track.
package metrics

import (
	"net/http"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ledger"

// Metrics holds the set of collectors the node reports.
type Metrics struct {
	registry *prometheus.Registry

	Requests       prometheus.Counter
	Errors         prometheus.Counter
	Panics         prometheus.Counter
	BlocksSealed   prometheus.Counter
	BlocksMined    prometheus.Counter
	MiningAttempts prometheus.Counter
	MiningDuration prometheus.Histogram
	ChainLength    prometheus.Gauge
}

// New constructs the collectors and registers them with a dedicated registry
// along with the process and go runtime collectors.
func New() *Metrics {
	m := Metrics{
		registry: prometheus.NewRegistry(),

		Requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Number of http requests handled.",
		}),
		Errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Number of http requests that returned an error.",
		}),
		Panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panics_total",
			Help:      "Number of panics recovered while handling requests.",
		}),
		BlocksSealed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_sealed_total",
			Help:      "Number of blocks appended to the chain.",
		}),
		BlocksMined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_mined_total",
			Help:      "Number of successful proof of work searches.",
		}),
		MiningAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mining_attempts_total",
			Help:      "Number of nonces tried across successful searches.",
		}),
		MiningDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mining_duration_seconds",
			Help:      "Time spent on successful proof of work searches.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		ChainLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chain_length",
			Help:      "Number of blocks in the chain.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Requests,
		m.Errors,
		m.Panics,
		m.BlocksSealed,
		m.BlocksMined,
		m.MiningAttempts,
		m.MiningDuration,
		m.ChainLength,
	)

	return &m
}

// Handler returns the http handler that exposes the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// =============================================================================
// These methods implement the state.Recorder interface.

// BlockSealed records a block being appended to the chain.
func (m *Metrics) BlockSealed(block database.Block) {
	m.BlocksSealed.Inc()
	m.ChainLength.Set(float64(block.Index + 1))
}

// BlockMined records a successful proof of work search.
func (m *Metrics) BlockMined(block database.Block, attempts uint64, duration time.Duration) {
	m.BlocksMined.Inc()
	m.MiningAttempts.Add(float64(attempts))
	m.MiningDuration.Observe(duration.Seconds())
}
