package catalog

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts catalog outcomes. A nil *Metrics records nothing.
type Metrics struct {
	Results  *prometheus.CounterVec
	Attempts *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Results: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storefront",
				Subsystem: "catalog",
				Name:      "results_total",
				Help:      "Catalog lookups by the source that answered them",
			},
			[]string{"source"},
		),
		Attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storefront",
				Subsystem: "catalog",
				Name:      "fetch_attempts_total",
				Help:      "Upstream catalog fetch attempts by outcome",
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(m.Results, m.Attempts)
	return m
}

func (m *Metrics) observeResult(src Source) {
	if m == nil {
		return
	}
	m.Results.WithLabelValues(string(src)).Inc()
}

func (m *Metrics) observeAttempt(outcome string) {
	if m == nil {
		return
	}
	m.Attempts.WithLabelValues(outcome).Inc()
}
