// Package metrics exposes Prometheus instruments for calls to external APIs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	externalRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tripplanner",
		Name:      "external_requests_total",
		Help:      "Outbound API requests by service, operation and outcome.",
	}, []string{"service", "operation", "outcome"})

	externalLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tripplanner",
		Name:      "external_request_duration_seconds",
		Help:      "Latency of outbound API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "operation"})

	tripsPlanned = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tripplanner",
		Name:      "trips_planned_total",
		Help:      "Trips planned, split by whether planning succeeded.",
	}, []string{"outcome"})
)

// ObserveRequest records one outbound request started at start.
func ObserveRequest(service, operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	externalRequests.WithLabelValues(service, operation, outcome).Inc()
	externalLatency.WithLabelValues(service, operation).Observe(time.Since(start).Seconds())
}

// TripPlanned counts a finished trip plan.
func TripPlanned(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	tripsPlanned.WithLabelValues(outcome).Inc()
}
