package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveUpstream(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveUpstream(ServiceRouting, "route", OutcomeOK, 20*time.Millisecond)
	m.ObserveUpstream(ServiceRouting, "route", OutcomeOK, 30*time.Millisecond)
	m.ObserveUpstream(ServiceGeocoding, "search", OutcomeFailure, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.upstreamRequests.WithLabelValues(ServiceRouting, "route", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequests.WithLabelValues(ServiceGeocoding, "search", OutcomeFailure)))
}

func TestObserveEvaluationAndSessions(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveEvaluation("stale")
	m.SetActiveSessions(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.tripEvaluations.WithLabelValues("stale")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeSessions))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveUpstream(ServiceRouting, "route", OutcomeOK, time.Second)
		m.ObserveEvaluation("route")
		m.SetActiveSessions(1)
	})
}
