package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP-level Prometheus metrics for the application.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	KafkaMessages   *prometheus.CounterVec
}

// New creates and registers all platform metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "isdialogmelding_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route and status",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"route", "status"}),

		KafkaMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "isdialogmelding_kafka_messages_total",
			Help: "Kafka records handled by topic and result",
		}, []string{"topic", "result"}), // result: "committed", "retried"
	}
}

// ObserveRequest records the duration of one HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
	}
}

// IncrementKafkaMessage counts one handled Kafka record.
func (m *Metrics) IncrementKafkaMessage(topic, result string) {
	if m != nil {
		m.KafkaMessages.WithLabelValues(topic, result).Inc()
	}
}

// Handler exposes the metrics registered on gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
