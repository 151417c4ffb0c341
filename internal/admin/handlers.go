// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package admin

import (
	"net/http"
	"time"

	"github.com/tomtom215/mcpbridge/internal/bridge"
)

// Health is the liveness probe. It answers 200 as long as the process serves
// HTTP, whatever the state of the bridge.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &Response{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: h.metadata(),
	})
}

// Ready is the readiness probe: 200 while a session is connected, 503
// otherwise.
func (h *Handler) Ready(w http.ResponseWriter, _ *http.Request) {
	snap := h.status.Snapshot()
	ready := snap.State == bridge.StateConnected

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &Response{
		Status: status,
		Data: map[string]interface{}{
			"state":     snap.State,
			"connected": ready,
		},
		Metadata: h.metadata(),
	})
}

// Status returns the full status snapshot.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &Response{
		Status:   "success",
		Data:     h.status.Snapshot(),
		Metadata: h.metadata(),
	})
}

func (h *Handler) metadata() Metadata {
	return Metadata{Timestamp: time.Now(), Version: h.version}
}
