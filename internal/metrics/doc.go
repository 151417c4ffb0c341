// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

/*
Package metrics provides Prometheus metrics for the bridge.

Metrics are registered on the default registry via promauto and exposed by the
admin server at /metrics when ADMIN_ENABLED=true:

	curl http://127.0.0.1:9464/metrics

# Available Metrics

Session Metrics:
  - bridge_sessions_started_total: Sessions whose transport connected (counter)
  - bridge_sessions_ended_total: Sessions ended (counter)
    Labels: cause (connect, spawn, relay, shutdown)
  - bridge_session_duration_seconds: Connected session lifetime (histogram)
  - bridge_connected: 1 while connected (gauge)

Reconnect Metrics:
  - bridge_reconnect_attempt: Consecutive failed attempts (gauge)
  - bridge_backoff_wait_seconds: Applied backoff delay (histogram)

Relay Metrics:
  - bridge_relay_messages_total, bridge_relay_bytes_total (counter)
    Labels: direction (inbound, outbound, diagnostics)
  - bridge_relay_errors_total: Relays that ended with an error (counter)
  - bridge_relay_throttle_wait_seconds_total: Inbound limiter wait (counter)

Child Process Metrics:
  - bridge_child_running: 1 while the child is alive (gauge)
  - bridge_child_spawns_total: Spawn attempts (counter), Labels: result
  - bridge_child_terminations_total: Teardowns (counter)
    Labels: mode (exited, graceful, killed)

Circuit Breaker Metrics (dial breaker, only when enabled):
  - circuit_breaker_state, circuit_breaker_requests_total,
    circuit_breaker_consecutive_failures, circuit_breaker_transitions_total
*/
package metrics
