package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks how apprec messages end up.
type Metrics struct {
	Outcomes      *prometheus.CounterVec
	Invalidations prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "isdialogmelding_apprec_outcomes_total",
			Help: "Processed apprec messages by outcome",
		}, []string{"outcome"}), // outcome: "ignored", "duplicate", "unmatched", "applied"
		Invalidations: factory.NewCounter(prometheus.CounterOpts{
			Name: "isdialogmelding_behandler_invalidated_total",
			Help: "Behandlere invalidated after an unknown-recipient apprec",
		}),
	}
}

func (m *Metrics) IncrementOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Outcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementInvalidation() {
	if m == nil {
		return
	}
	m.Invalidations.Inc()
}
