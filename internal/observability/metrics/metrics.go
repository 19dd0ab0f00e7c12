package metrics

import "github.com/prometheus/client_golang/prometheus"

// ClaimsMetrics exposes counters/gauges for the claims repository.
type ClaimsMetrics struct {
	mutationsTotal      *prometheus.CounterVec
	persistenceFailures *prometheus.CounterVec
	localFallbackTotal  prometheus.Counter
	claimCount          prometheus.Gauge
	analyticsLatency    prometheus.Histogram
}

func NewClaimsMetrics(reg prometheus.Registerer) *ClaimsMetrics {
	m := &ClaimsMetrics{
		mutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "claimdesk",
			Subsystem: "claims",
			Name:      "mutations_total",
			Help:      "Total repository mutation attempts",
		}, []string{"operation", "result"}),
		persistenceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "claimdesk",
			Subsystem: "claims",
			Name:      "persistence_failures_total",
			Help:      "Total primary store failures",
		}, []string{"operation"}),
		localFallbackTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "claimdesk",
			Subsystem: "claims",
			Name:      "local_fallback_total",
			Help:      "Total creates kept local-only after a failed write",
		}),
		claimCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "claimdesk",
			Subsystem: "claims",
			Name:      "collection_size",
			Help:      "Claims currently held in the canonical collection",
		}),
		analyticsLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "claimdesk",
			Subsystem: "claims",
			Name:      "analytics_duration_seconds",
			Help:      "Latency of analytics snapshot computation",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.mutationsTotal, m.persistenceFailures, m.localFallbackTotal, m.claimCount, m.analyticsLatency)
	return m
}

func (m *ClaimsMetrics) MutationApplied(operation, result string) {
	if m == nil {
		return
	}
	m.mutationsTotal.WithLabelValues(operation, result).Inc()
}

func (m *ClaimsMetrics) PersistenceFailure(operation string) {
	if m == nil {
		return
	}
	m.persistenceFailures.WithLabelValues(operation).Inc()
}

func (m *ClaimsMetrics) LocalFallback() {
	if m == nil {
		return
	}
	m.localFallbackTotal.Inc()
}

func (m *ClaimsMetrics) SetClaimCount(n int) {
	if m == nil {
		return
	}
	m.claimCount.Set(float64(n))
}

func (m *ClaimsMetrics) ObserveAnalyticsLatency(seconds float64) {
	if m == nil {
		return
	}
	m.analyticsLatency.Observe(seconds)
}
