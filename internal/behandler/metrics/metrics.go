package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the behandler module.
// Tracks reconcile outcomes, registry lookups and the GetBehandlere path.
type Metrics struct {
	Reconciled            *prometheus.CounterVec
	ReconcileRetries      prometheus.Counter
	RegistryLookups       *prometheus.CounterVec
	GetBehandlereDuration prometheus.Histogram
}

// New creates a new Metrics instance with all behandler metrics registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Reconciled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "isdialogmelding_behandler_reconciled_total",
			Help: "Reconciled behandler candidates by relation type and path",
		}, []string{"type", "path"}), // path: "created", "updated"
		ReconcileRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "isdialogmelding_behandler_reconcile_retries_total",
			Help: "Reconcile attempts retried after a uniqueness conflict",
		}),
		RegistryLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "isdialogmelding_registry_lookups_total",
			Help: "Registry lookups by registry and result",
		}, []string{"registry", "result"}), // result: "found", "none", "error"
		GetBehandlereDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "isdialogmelding_get_behandlere_duration_seconds",
			Help:    "Duration of GetBehandlere including registry calls",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

func (m *Metrics) IncrementReconciled(kind, path string) {
	if m == nil {
		return
	}
	m.Reconciled.WithLabelValues(kind, path).Inc()
}

func (m *Metrics) IncrementReconcileRetry() {
	if m == nil {
		return
	}
	m.ReconcileRetries.Inc()
}

func (m *Metrics) IncrementRegistryLookup(registry, result string) {
	if m == nil {
		return
	}
	m.RegistryLookups.WithLabelValues(registry, result).Inc()
}

// ObserveGetBehandlere records the duration since start.
func (m *Metrics) ObserveGetBehandlere(start time.Time) {
	if m == nil {
		return
	}
	m.GetBehandlereDuration.Observe(time.Since(start).Seconds())
}
