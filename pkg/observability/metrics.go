// Package observability exposes Prometheus metrics and health endpoints
// for the conversation router.
package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Routing metrics
	turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tellergo_turns_total",
			Help: "Total number of conversation turns",
		},
		[]string{"agent", "status"},
	)

	turnDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tellergo_turn_duration_seconds",
			Help:    "Conversation turn duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"agent"},
	)

	transfersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tellergo_transfers_total",
			Help: "Total number of agent transfer directives applied",
		},
		[]string{"target", "kind"},
	)

	skipRoutingTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tellergo_skip_routing_total",
			Help: "Turns routed directly to the active specialist without the coordinator",
		},
	)

	// Tool metrics
	toolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tellergo_tool_calls_total",
			Help: "Total number of tool calls",
		},
		[]string{"tool", "status"},
	)

	toolCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tellergo_tool_call_duration_seconds",
			Help:    "Tool call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	// Persistence metrics
	checkpointsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tellergo_checkpoints_total",
			Help: "Total number of checkpoints written",
		},
		[]string{"status"},
	)

	sessionsSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tellergo_sessions_swept_total",
			Help: "Stale session records deleted by maintenance",
		},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tellergo_active_sessions",
			Help: "Session records currently held in the store",
		},
	)

	initOnce sync.Once
)

// InitMetrics initializes Prometheus metrics
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			turnsTotal,
			turnDuration,
			transfersTotal,
			skipRoutingTotal,
			toolCallsTotal,
			toolCallDuration,
			checkpointsTotal,
			sessionsSweptTotal,
			activeSessions,
		)
	})
}

// MetricsHandler returns an HTTP handler for Prometheus metrics
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordTurn records one completed (or failed) conversation turn.
func RecordTurn(agent, status string, duration time.Duration) {
	turnsTotal.WithLabelValues(agent, status).Inc()
	turnDuration.WithLabelValues(agent).Observe(duration.Seconds())
}

// RecordTransfer records an applied transfer directive.
func RecordTransfer(target, kind string) {
	transfersTotal.WithLabelValues(target, kind).Inc()
}

// RecordSkipRouting records a turn dispatched straight to a specialist.
func RecordSkipRouting() {
	skipRoutingTotal.Inc()
}

// RecordToolCall records tool call metrics
func RecordToolCall(tool, status string, duration time.Duration) {
	toolCallsTotal.WithLabelValues(tool, status).Inc()
	toolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordCheckpoint records a checkpoint write.
func RecordCheckpoint(status string) {
	checkpointsTotal.WithLabelValues(status).Inc()
}

// RecordSessionsSwept adds to the swept-sessions counter.
func RecordSessionsSwept(count int) {
	sessionsSweptTotal.Add(float64(count))
}

// SetActiveSessions sets the active sessions gauge
func SetActiveSessions(count int) {
	activeSessions.Set(float64(count))
}
