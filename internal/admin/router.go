// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package admin

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/mcpbridge/internal/bridge"
)

// StatusSource provides the current bridge status. *bridge.Status
// implements it.
type StatusSource interface {
	Snapshot() bridge.Snapshot
}

// Options configure the admin router.
type Options struct {
	// RateLimit is requests per minute per client IP. 0 disables limiting.
	RateLimit int

	// Version is reported in response metadata.
	Version string

	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// Handler serves the admin endpoints.
type Handler struct {
	status    StatusSource
	version   string
	startTime time.Time
}

// NewRouter builds the admin HTTP handler.
func NewRouter(status StatusSource, opts Options) http.Handler {
	h := &Handler{
		status:    status,
		version:   opts.Version,
		startTime: time.Now(),
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestMetrics)
	if opts.RateLimit > 0 {
		r.Use(httprate.LimitByIP(opts.RateLimit, time.Minute))
	}

	r.Get("/healthz", h.Health)
	r.Get("/readyz", h.Ready)
	r.Get("/status", h.Status)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	return r
}
