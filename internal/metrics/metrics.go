// Package metrics exposes Prometheus collectors for upstream calls and trip
// evaluations.
//
// Go Learning Note — Nil Receivers:
// Every method on *Metrics checks for a nil receiver first. Components hold a
// *Metrics that may be nil (tests, tools), and calling a method on a nil
// pointer is legal in Go as long as the method never dereferences it. That
// keeps "if m != nil" checks out of every call site.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Upstream services and call outcomes used as label values.
const (
	ServiceGeocoding = "geocoding"
	ServiceRouting   = "routing"

	OutcomeOK      = "ok"
	OutcomeEmpty   = "empty"
	OutcomeFailure = "failure"
)

// Metrics groups the collectors registered by the service.
type Metrics struct {
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	tripEvaluations  *prometheus.CounterVec
	activeSessions   prometheus.Gauge
}

// New creates the collectors and registers them on reg. A dedicated
// registry per process (instead of the global default) lets tests build as
// many Metrics as they like.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ridefare",
			Name:      "upstream_requests_total",
			Help:      "Requests made to the geocoding and routing services, by outcome.",
		}, []string{"service", "operation", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ridefare",
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of requests to the geocoding and routing services.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		tripEvaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ridefare",
			Name:      "trip_evaluations_total",
			Help:      "Route evaluations run by trip controllers, by result.",
		}, []string{"result"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ridefare",
			Name:      "trip_sessions_active",
			Help:      "Trip sessions currently held in memory.",
		}),
	}
	reg.MustRegister(m.upstreamRequests, m.upstreamLatency, m.tripEvaluations, m.activeSessions)
	return m
}

// ObserveUpstream records one upstream call.
func (m *Metrics) ObserveUpstream(service, operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(service, operation, outcome).Inc()
	m.upstreamLatency.WithLabelValues(service, operation).Observe(elapsed.Seconds())
}

// ObserveEvaluation records the terminal result of one trip evaluation:
// "route", "no_route", "network" or "stale".
func (m *Metrics) ObserveEvaluation(result string) {
	if m == nil {
		return
	}
	m.tripEvaluations.WithLabelValues(result).Inc()
}

// SetActiveSessions reports the current number of trip sessions.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
