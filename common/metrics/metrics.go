package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics contains HTTP-related Prometheus metrics
type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// BusinessMetrics contains payment-specific metrics
type BusinessMetrics struct {
	PaymentsCreated   prometheus.Counter
	PaymentsAccepted  prometheus.Counter
	PaymentsDeclined  prometheus.Counter
	StripeAPIDuration prometheus.Histogram
}

// NewHTTPMetrics creates HTTP metrics for a service
func NewHTTPMetrics(serviceName string) *HTTPMetrics {
	return &HTTPMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: serviceName + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    serviceName + "_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// NewBusinessMetrics creates payment workflow metrics for a service
func NewBusinessMetrics(serviceName string) *BusinessMetrics {
	return &BusinessMetrics{
		PaymentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: serviceName + "_payments_created_total",
			Help: "Total number of payments persisted",
		}),
		PaymentsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: serviceName + "_payments_accepted_total",
			Help: "Total number of payments accepted by the charge provider",
		}),
		PaymentsDeclined: promauto.NewCounter(prometheus.CounterOpts{
			Name: serviceName + "_payments_declined_total",
			Help: "Total number of payments declined by the charge provider",
		}),
		StripeAPIDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    serviceName + "_stripe_api_duration_seconds",
			Help:    "Stripe API call duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordHTTPRequest records a completed HTTP request
func (m *HTTPMetrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
