package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/verticalview/client-portal/internal/core/domain"
)

// PortalMetrics counts store calls and portal business events. It satisfies
// both the store call observer and the use-case observer.
type PortalMetrics struct {
	service string

	storeCallsTotal      *prometheus.CounterVec
	storeCallDuration    *prometheus.HistogramVec
	reviewTransitions    *prometheus.CounterVec
	dashboardLoadsTotal  *prometheus.CounterVec
	unknownStatusesTotal *prometheus.CounterVec
	breakerState         *prometheus.GaugeVec
}

func newPortalMetrics(service string, registry *prometheus.Registry) *PortalMetrics {
	storeCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "store",
			Name:      "calls_total",
			Help:      "Total remote store calls by table, operation and outcome.",
		},
		[]string{"service", "table", "operation", "outcome"},
	)
	storeCallDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "store",
			Name:      "call_duration_seconds",
			Help:      "Remote store call duration in seconds, including rate limit waits.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "table", "operation"},
	)
	reviewTransitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "review",
			Name:      "transitions_total",
			Help:      "Client review decisions by action and outcome.",
		},
		[]string{"service", "action", "outcome"},
	)
	dashboardLoadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "dashboard",
			Name:      "loads_total",
			Help:      "Dashboard assemblies by outcome.",
		},
		[]string{"service", "outcome"},
	)
	unknownStatusesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "dashboard",
			Name:      "unrecognized_status_total",
			Help:      "Videos whose production status matched no pipeline stage.",
		},
		[]string{"service"},
	)

	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "portal",
			Subsystem: "resilience",
			Name:      "breaker_state",
			Help:      "Circuit breaker state per operation: 0 closed, 1 half-open, 2 open.",
		},
		[]string{"service", "operation"},
	)

	registry.MustRegister(
		breakerState,
		storeCallsTotal,
		storeCallDuration,
		reviewTransitions,
		dashboardLoadsTotal,
		unknownStatusesTotal,
	)

	return &PortalMetrics{
		service:              service,
		storeCallsTotal:      storeCallsTotal,
		storeCallDuration:    storeCallDuration,
		reviewTransitions:    reviewTransitions,
		dashboardLoadsTotal:  dashboardLoadsTotal,
		unknownStatusesTotal: unknownStatusesTotal,
		breakerState:         breakerState,
	}
}

func (m *PortalMetrics) ObserveStoreCall(table, operation, outcome string, duration time.Duration) {
	m.storeCallsTotal.WithLabelValues(m.service, table, operation, outcome).Inc()
	m.storeCallDuration.WithLabelValues(m.service, table, operation).Observe(duration.Seconds())
}

func (m *PortalMetrics) ObserveDashboardLoad(outcome string) {
	m.dashboardLoadsTotal.WithLabelValues(m.service, outcome).Inc()
}

func (m *PortalMetrics) ObserveUnknownStatus() {
	m.unknownStatusesTotal.WithLabelValues(m.service).Inc()
}

func (m *PortalMetrics) ObserveReviewTransition(action domain.ReviewAction, outcome string) {
	m.reviewTransitions.WithLabelValues(m.service, string(action), outcome).Inc()
}

func (m *PortalMetrics) ObserveBreakerState(operation, state string) {
	value := 0.0
	switch state {
	case "half-open":
		value = 1
	case "open":
		value = 2
	}
	m.breakerState.WithLabelValues(m.service, operation).Set(value)
}
