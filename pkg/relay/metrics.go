package relay

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the relay's instrumentation. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates relay metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_dispatches_total",
			Help: "Dispatched operations by kind and outcome.",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relay_dispatch_duration_seconds",
			Help:    "Dispatch round-trip latency by kind.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	reg.MustRegister(m.dispatches, m.duration)
	return m
}

func (m *Metrics) observe(kind string, outcome EnvelopeState, seconds float64) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(kind, string(outcome)).Inc()
	m.duration.WithLabelValues(kind).Observe(seconds)
}
