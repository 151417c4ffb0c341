// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

/*
Package admin serves the optional local HTTP surface of mcpbridge.

Endpoints:

	GET /healthz   liveness, always 200
	GET /readyz    200 while a session is connected, 503 otherwise
	GET /status    bridge.Snapshot wrapped in the standard response envelope
	GET /metrics   Prometheus exposition

The router is go-chi/chi with RequestID and Recoverer middleware, plus
per-IP rate limiting through go-chi/httprate when ADMIN_RATE_LIMIT is above
zero. Each request is counted and timed under its route pattern
(admin_requests_total, admin_request_duration_seconds); unmatched paths share
the "unmatched" label. Responses are encoded with goccy/go-json.

The server binds to 127.0.0.1:9464 by default and is disabled unless
ADMIN_ENABLED=true. It exposes no write operations.
*/
package admin
