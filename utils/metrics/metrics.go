package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Write operations on projects and tasks by outcome
	DomainOperationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_operation_count",
			Help: "Total number of project and task write operations",
		},
		[]string{"resource", "operation", "outcome"}, // outcome: success, failed
	)

	// Failed login attempts
	LoginFailureCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_login_failure_count",
			Help: "Total number of rejected login attempts",
		},
	)

	// Event publish failures per routing key
	EventPublishFailureCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_publish_failure_count",
			Help: "Total number of domain events that could not be published",
		},
		[]string{"routing_key"},
	)
)

// RecordHTTPRequestDuration records the latency of one HTTP request
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDomainOperation counts a write on a project or task
func RecordDomainOperation(resource, operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failed"
	}
	DomainOperationCount.WithLabelValues(resource, operation, outcome).Inc()
}

// IncrementLoginFailure counts a rejected login
func IncrementLoginFailure() {
	LoginFailureCount.Inc()
}

// IncrementEventPublishFailure counts an event that never reached the broker
func IncrementEventPublishFailure(routingKey string) {
	EventPublishFailureCount.WithLabelValues(routingKey).Inc()
}
