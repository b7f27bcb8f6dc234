package fees

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result labels for the cycles counter.
const (
	ResultSkipped = "skipped"
	ResultApplied = "applied"
	ResultFailed  = "failed"
)

// Metrics are the Prometheus collectors updated by the Engine. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	Checks      *prometheus.CounterVec
	Recomputed  prometheus.Counter
	Duration    prometheus.Histogram
	LastSuccess prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "society",
			Subsystem: "fees",
			Name:      "checks_total",
			Help:      "Scheduled fee checks, by result.",
		}, []string{"result"}),
		Recomputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "society",
			Subsystem: "fees",
			Name:      "entries_recomputed_total",
			Help:      "User entries whose fee and payment status were recomputed.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "society",
			Subsystem: "fees",
			Name:      "cycle_duration_seconds",
			Help:      "Time spent in one recompute cycle, persistence included.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "society",
			Subsystem: "fees",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last recompute cycle that was persisted.",
		}),
	}
	reg.MustRegister(m.Checks, m.Recomputed, m.Duration, m.LastSuccess)
	return m
}

func (m *Metrics) observe(result string, c Cycle) {
	if m == nil {
		return
	}
	m.Checks.WithLabelValues(result).Inc()
	if result == ResultSkipped {
		return
	}
	m.Recomputed.Add(float64(c.Users))
	m.Duration.Observe(c.Duration.Seconds())
	if result == ResultApplied {
		m.LastSuccess.Set(float64(c.At.Unix()))
	}
}
