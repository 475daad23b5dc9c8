package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ToolMetrics instruments the assistant tool server.
type ToolMetrics struct {
	*PortalMetrics

	registry *prometheus.Registry

	callTotal    *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	callInFlight prometheus.Gauge
}

func NewToolMetrics(service string) *ToolMetrics {
	registry := prometheus.NewRegistry()

	callTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "mcp",
			Name:      "tool_calls_total",
			Help:      "Total tool calls by tool and status.",
		},
		[]string{"service", "tool", "status"},
	)
	callDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "mcp",
			Name:      "tool_call_duration_seconds",
			Help:      "Tool call duration in seconds by tool and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "tool", "status"},
	)
	callInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "portal",
			Subsystem: "mcp",
			Name:      "tool_calls_in_flight",
			Help:      "Number of in-flight tool calls.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(callTotal, callDuration, callInFlight)

	return &ToolMetrics{
		PortalMetrics: newPortalMetrics(service, registry),
		registry:      registry,
		callTotal:     callTotal,
		callDuration:  callDuration,
		callInFlight:  callInFlight,
	}
}

func (m *ToolMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ToolMetrics) StartCall() {
	m.callInFlight.Inc()
}

func (m *ToolMetrics) FinishCall(service, tool string, duration time.Duration, failed bool) {
	m.callInFlight.Dec()

	status := "success"
	if failed {
		status = "error"
	}

	m.callTotal.WithLabelValues(service, tool, status).Inc()
	m.callDuration.WithLabelValues(service, tool, status).Observe(duration.Seconds())
}
