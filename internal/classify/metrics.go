package classify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts pipeline activity. Write a snapshot with prometheus.WriteToTextfile
// for the node exporter textfile collector.
type Metrics struct {
	calls    *prometheus.CounterVec
	failures prometheus.Counter
	latency  prometheus.Histogram
}

// NewMetrics registers the pipeline collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "biascheck",
			Name:      "classifications_total",
			Help:      "Classified sentences by parsed label.",
		}, []string{"label"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "biascheck",
			Name:      "classification_failures_total",
			Help:      "Sentences skipped because the classification call failed.",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "biascheck",
			Name:      "classification_duration_seconds",
			Help:      "Latency of single classification calls.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}
	reg.MustRegister(m.calls, m.failures, m.latency)
	return m
}

func (m *Metrics) observe(o Outcome, took time.Duration) {
	if m == nil {
		return
	}
	m.latency.Observe(took.Seconds())
	if o.Skipped() {
		m.failures.Inc()
		return
	}
	m.calls.WithLabelValues(o.Label.String()).Inc()
}
