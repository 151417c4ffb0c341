// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package main

import (
	"net/http"
	"time"

	"github.com/tomtom215/mcpbridge/internal/admin"
	"github.com/tomtom215/mcpbridge/internal/bridge"
	"github.com/tomtom215/mcpbridge/internal/config"
	"github.com/tomtom215/mcpbridge/internal/logging"
	"github.com/tomtom215/mcpbridge/internal/process"
	"github.com/tomtom215/mcpbridge/internal/transport"
)

// initBridge wires transport, process spawner, session and reconnect loop.
func initBridge(cfg *config.Config, status *bridge.Status) *bridge.Supervisor {
	endpoint := config.RedactURL(cfg.Endpoint.URL)

	var dialer transport.ContextDialer = transport.NewDialer(transport.Options{
		HandshakeTimeout: cfg.Endpoint.HandshakeTimeout,
		WriteTimeout:     cfg.Endpoint.WriteTimeout,
		PingInterval:     cfg.Endpoint.PingInterval,
		PongWait:         cfg.Endpoint.PongWait,
		ReadLimit:        cfg.Endpoint.ReadLimit,
		Compression:      cfg.Endpoint.Compression,
	})

	if cfg.Breaker.Enabled {
		breaker := transport.NewBreakerDialer(dialer, transport.BreakerSettings{
			Name:             "websocket-dial",
			FailureThreshold: cfg.Breaker.FailureThreshold,
			OpenTimeout:      cfg.Breaker.OpenTimeout,
		})
		status.SetBreakerSource(breaker.State)
		dialer = breaker
		logging.Info().
			Uint32("failure_threshold", cfg.Breaker.FailureThreshold).
			Dur("open_timeout", cfg.Breaker.OpenTimeout).
			Msg("Dial circuit breaker enabled")
	}

	argv := cfg.Process.Argv()
	spawner := bridge.ProcessSpawner{Spec: process.Spec{
		Command: argv[0],
		Args:    argv[1:],
		Dir:     cfg.Process.WorkDir,
	}}

	session := bridge.NewSession(bridge.SessionConfig{
		URL:                    cfg.Endpoint.URL,
		GracePeriod:            cfg.Process.GracePeriod,
		MaxLineBytes:           cfg.Relay.MaxLineBytes,
		InboundRate:            cfg.Relay.InboundRate,
		InboundBurst:           cfg.Relay.InboundBurst,
		DiagnosticsEndsSession: cfg.Relay.DiagnosticsEndsSession,
	}, endpoint, bridge.WebSocketDialer{Next: dialer}, spawner, status)

	return bridge.NewSupervisor(session, bridge.BackoffPolicy{
		Initial: cfg.Reconnect.InitialBackoff,
		Max:     cfg.Reconnect.MaxBackoff,
		Jitter:  cfg.Reconnect.Jitter,
	}, status)
}

// initAdminServer returns nil when the admin surface is disabled.
func initAdminServer(cfg *config.Config, status *bridge.Status) *http.Server {
	if !cfg.Admin.Enabled {
		return nil
	}
	return &http.Server{
		Addr: cfg.Admin.Addr,
		Handler: admin.NewRouter(status, admin.Options{
			RateLimit: cfg.Admin.RateLimit,
			Version:   version,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
