package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("/api/v1/behandler/personident", http.StatusOK, 20*time.Millisecond)
	m.IncrementKafkaMessage("teamsykefravr.apprec", "committed")
	m.IncrementKafkaMessage("teamsykefravr.apprec", "committed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.KafkaMessages.WithLabelValues("teamsykefravr.apprec", "committed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/internal/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "isdialogmelding_kafka_messages_total")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("/", http.StatusOK, time.Millisecond)
		m.IncrementKafkaMessage("topic", "committed")
	})
}
