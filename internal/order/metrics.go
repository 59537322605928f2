package order

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts checkout outcomes. A nil *Metrics records nothing.
type Metrics struct {
	Checkouts *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Checkouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storefront",
				Subsystem: "order",
				Name:      "checkouts_total",
				Help:      "Checkout attempts by outcome",
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(m.Checkouts)
	return m
}

func (m *Metrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(outcome).Inc()
}
