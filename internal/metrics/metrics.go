// Package metrics holds the prometheus collectors for the cargotrack backend.
// Collectors register on first use; Handler exposes them for scraping.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cargotrack"

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	admissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admission_decisions_total",
			Help:      "Capacity admission checks by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
	overloadedTrips = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "capacity_overloaded_trips",
			Help:      "Trips whose cargo exceeded vehicle capacity at the last audit.",
		},
	)
)

// Register adds all collectors to the default registry. Safe to call repeatedly.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, admissions, overloadedTrips)
	})
}

// Handler serves the default registry in the prometheus text format.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	Register()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, route, statusLabel).Inc()
	httpDuration.WithLabelValues(method, route, statusLabel).Observe(duration.Seconds())
}

// RecordAdmission counts one admission decision.
func RecordAdmission(operation string, admitted bool) {
	Register()
	outcome := "rejected"
	if admitted {
		outcome = "admitted"
	}
	admissions.WithLabelValues(operation, outcome).Inc()
}

func SetOverloadedTrips(n int) {
	Register()
	overloadedTrips.Set(float64(n))
}
