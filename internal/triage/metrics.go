package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the triage subsystem.
type Metrics struct {
	DecisionsTotal *prometheus.CounterVec
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "claimgate_triage_decisions_total",
			Help: "Total triage decisions by queue and kind.",
		}, []string{"queue", "kind"}),
	}
	reg.MustRegister(m.DecisionsTotal)
	return m
}
