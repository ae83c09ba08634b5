package risk

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the risk subsystem.
type Metrics struct {
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	SignalsTriggered   *prometheus.CounterVec
	ObservationCount   prometheus.Histogram
	Score              prometheus.Histogram
	AdvisorFailures    prometheus.Counter
}

// NewMetrics registers and returns risk metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "claimgate_risk_evaluations_total",
			Help: "Total risk evaluations by final risk level.",
		}, []string{"level"}),
		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "claimgate_risk_evaluation_duration_seconds",
			Help:    "Duration of risk evaluations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s .. ~51s
		}),
		SignalsTriggered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "claimgate_risk_signals_triggered_total",
			Help: "Total triggered rule signals by rule name.",
		}, []string{"rule"}),
		ObservationCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "claimgate_risk_ai_observations",
			Help:    "AI observations per evaluation.",
			Buckets: prometheus.LinearBuckets(0, 1, 8), // 0 .. 7
		}),
		Score: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "claimgate_risk_score",
			Help:    "Overall risk score per evaluation.",
			Buckets: prometheus.LinearBuckets(0, 10, 11), // 0 .. 100
		}),
		AdvisorFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "claimgate_risk_advisor_failures_total",
			Help: "Advisory AI passes that degraded to zero observations.",
		}),
	}

	reg.MustRegister(
		m.EvaluationsTotal,
		m.EvaluationDuration,
		m.SignalsTriggered,
		m.ObservationCount,
		m.Score,
		m.AdvisorFailures,
	)

	return m
}
