package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementReconciled("FASTLEGE", "created")
	m.IncrementReconciled("FASTLEGE", "created")
	m.IncrementReconcileRetry()
	m.IncrementRegistryLookup("fastlege", "none")
	m.ObserveGetBehandlere(time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Reconciled.WithLabelValues("FASTLEGE", "created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReconcileRetries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistryLookups.WithLabelValues("fastlege", "none")))
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementReconciled("SYKMELDER", "updated")
		m.IncrementReconcileRetry()
		m.IncrementRegistryLookup("partnerinfo", "error")
		m.ObserveGetBehandlere(time.Now())
	})
}
