// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Relay directions used as label values.
const (
	DirectionInbound     = "inbound"
	DirectionOutbound    = "outbound"
	DirectionDiagnostics = "diagnostics"
)

var (
	// Session Metrics
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_sessions_started_total",
			Help: "Total number of sessions whose transport connected",
		},
	)

	SessionsEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_sessions_ended_total",
			Help: "Total number of sessions that ended, by cause",
		},
		[]string{"cause"}, // "connect", "spawn", "relay", "shutdown"
	)

	SessionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bridge_session_duration_seconds",
			Help:    "Lifetime of connected sessions in seconds",
			Buckets: []float64{1, 10, 60, 300, 900, 3600, 4 * 3600, 24 * 3600},
		},
	)

	Connected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bridge_connected",
			Help: "1 while a transport connection is established, 0 otherwise",
		},
	)

	// Reconnect Metrics
	ReconnectAttempt = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bridge_reconnect_attempt",
			Help: "Current consecutive failed attempt counter (0 after a successful connect)",
		},
	)

	BackoffWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bridge_backoff_wait_seconds",
			Help:    "Backoff delay applied before reconnect attempts",
			Buckets: []float64{0.5, 1, 2, 4, 8, 16, 32, 64},
		},
	)

	// Relay Metrics
	RelayMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_relay_messages_total",
			Help: "Units forwarded by each relay",
		},
		[]string{"direction"},
	)

	RelayBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_relay_bytes_total",
			Help: "Payload bytes forwarded by each relay",
		},
		[]string{"direction"},
	)

	RelayErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_relay_errors_total",
			Help: "Relays that terminated with an error",
		},
		[]string{"direction"},
	)

	RelayThrottleWait = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_relay_throttle_wait_seconds_total",
			Help: "Cumulative time inbound messages spent waiting on the rate limiter",
		},
	)

	// Child Process Metrics
	ChildRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bridge_child_running",
			Help: "1 while the child process is alive, 0 otherwise",
		},
	)

	ChildSpawns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_child_spawns_total",
			Help: "Child process spawn attempts",
		},
		[]string{"result"}, // "success", "failure"
	)

	ChildTerminations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_child_terminations_total",
			Help: "Child process teardowns by how the process ended",
		},
		[]string{"mode"}, // "exited", "graceful", "killed"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Consecutive failures seen by the circuit breaker",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Admin API Metrics
	AdminRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Admin HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	AdminRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "admin_request_duration_seconds",
			Help:    "Admin HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordSessionStart marks a connected session.
func RecordSessionStart() {
	SessionsStarted.Inc()
	Connected.Set(1)
}

// RecordSessionEnd records why a session ended and, for sessions that
// connected, how long they lived.
func RecordSessionEnd(cause string, connected bool, lifetime time.Duration) {
	SessionsEnded.WithLabelValues(cause).Inc()
	if connected {
		SessionDuration.Observe(lifetime.Seconds())
	}
	Connected.Set(0)
}

// RecordBackoff records the attempt counter and the delay about to be slept.
func RecordBackoff(attempt int, wait time.Duration) {
	ReconnectAttempt.Set(float64(attempt))
	BackoffWait.Observe(wait.Seconds())
}

// ResetAttempts clears the attempt gauge after a successful connect.
func ResetAttempts() {
	ReconnectAttempt.Set(0)
}

// RecordRelayUnit records one forwarded unit.
func RecordRelayUnit(direction string, size int) {
	RelayMessages.WithLabelValues(direction).Inc()
	RelayBytes.WithLabelValues(direction).Add(float64(size))
}

// RecordRelayBytes records a verbatim chunk copy (diagnostics relay).
func RecordRelayBytes(direction string, size int64) {
	RelayBytes.WithLabelValues(direction).Add(float64(size))
}

// RecordRelayError records a relay that ended with an error.
func RecordRelayError(direction string) {
	RelayErrors.WithLabelValues(direction).Inc()
}

// RecordThrottleWait accumulates limiter wait time.
func RecordThrottleWait(d time.Duration) {
	if d > 0 {
		RelayThrottleWait.Add(d.Seconds())
	}
}

// RecordSpawn records a child spawn attempt.
func RecordSpawn(err error) {
	if err != nil {
		ChildSpawns.WithLabelValues("failure").Inc()
		return
	}
	ChildSpawns.WithLabelValues("success").Inc()
	ChildRunning.Set(1)
}

// RecordTermination records how a child ended during teardown.
func RecordTermination(mode string) {
	ChildTerminations.WithLabelValues(mode).Inc()
	ChildRunning.Set(0)
}

// RecordAdminRequest records one admin HTTP request.
func RecordAdminRequest(method, route, status string, d time.Duration) {
	AdminRequests.WithLabelValues(method, route, status).Inc()
	AdminRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
