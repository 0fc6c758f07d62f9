// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// CompletionDuration tracks chat completion call duration.
	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_completion_duration_seconds",
			Help:    "Chat completion call duration",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"model", "status"},
	)

	// CompletionTokensTotal tracks total tokens processed by the model.
	CompletionTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// ToolExecutionsTotal tracks dispatched tool calls by outcome.
	ToolExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_tool_executions_total",
			Help: "Total tool calls dispatched by the agent",
		},
		[]string{"tool", "status"},
	)

	// UploadsTotal tracks storage submissions by outcome.
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_uploads_total",
			Help: "Total storage upload submissions",
		},
		[]string{"status"},
	)

	// ConfirmationAttemptsTotal tracks status-lookup attempts made while
	// waiting for a durable transaction id.
	ConfirmationAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storage_confirmation_attempts_total",
			Help: "Status lookups performed by the upload confirmation poller",
		},
	)

	// ConfirmationsTotal tracks poller outcomes.
	ConfirmationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_confirmations_total",
			Help: "Upload confirmation outcomes",
		},
		[]string{"outcome"},
	)

	// SocketConnectionsActive tracks open WebSocket connections.
	SocketConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "socket_connections_active",
			Help: "Number of active WebSocket connections",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordCompletion records metrics for a chat completion call.
func RecordCompletion(model, status string, duration float64, tokensIn, tokensOut int) {
	CompletionDuration.WithLabelValues(model, status).Observe(duration)
	CompletionTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	CompletionTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
}

// IncrementSocketConnections increments the active connection count.
func IncrementSocketConnections() {
	SocketConnectionsActive.Inc()
}

// DecrementSocketConnections decrements the active connection count.
func DecrementSocketConnections() {
	SocketConnectionsActive.Dec()
}
