// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mcpbridge/internal/logging"
)

// AdminServer is the part of *http.Server the admin service drives.
type AdminServer interface {
	Serve(ln net.Listener) error
	Shutdown(ctx context.Context) error
}

// AdminServerService binds the admin address and serves on it under suture.
//
// The service owns the listener, so a busy port fails Serve with a bind
// error and suture retries it. On cancellation the server gets
// shutdownTimeout to drain in-flight requests.
//
//	server := &http.Server{Handler: admin.NewRouter(status, opts)}
//	tree.AddAdminService(services.NewAdminServerService(server, "127.0.0.1:9464", 5*time.Second))
type AdminServerService struct {
	server          AdminServer
	addr            string
	shutdownTimeout time.Duration
	listen          func(network, addr string) (net.Listener, error)
	logger          zerolog.Logger

	mu        sync.Mutex
	boundAddr string
}

// NewAdminServerService creates the service. A non-positive shutdownTimeout
// defaults to 10s.
func NewAdminServerService(server AdminServer, addr string, shutdownTimeout time.Duration) *AdminServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &AdminServerService{
		server:          server,
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
		listen:          net.Listen,
		logger:          logging.WithComponent("admin"),
	}
}

// Serve implements suture.Service.
func (a *AdminServerService) Serve(ctx context.Context) error {
	ln, err := a.listen("tcp", a.addr)
	if err != nil {
		return fmt.Errorf("admin listen on %s: %w", a.addr, err)
	}

	bound := ln.Addr().String()
	a.logger.Info().Str("addr", bound).Msg("Admin server listening")
	a.setBoundAddr(bound)
	defer a.setBoundAddr("")

	serveErr := make(chan error, 1)
	go func() { serveErr <- a.server.Serve(ln) }()

	select {
	case err := <-serveErr:
		// Serve only returns on its own if the listener broke.
		return fmt.Errorf("admin server stopped: %w", err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		start := time.Now()
		shutdownErr := a.server.Shutdown(shutdownCtx)
		if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn().Err(err).Msg("Admin server returned during shutdown")
		}
		if shutdownErr != nil {
			return fmt.Errorf("admin shutdown after %v: %w", time.Since(start).Round(time.Millisecond), shutdownErr)
		}
		a.logger.Info().Dur("took", time.Since(start)).Msg("Admin server stopped")
		return ctx.Err()
	}
}

// Addr returns the address the server is listening on, or "" while it is
// not listening. With port 0 this is the port the kernel picked.
func (a *AdminServerService) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.boundAddr
}

func (a *AdminServerService) setBoundAddr(addr string) {
	a.mu.Lock()
	a.boundAddr = addr
	a.mu.Unlock()
}

// String implements fmt.Stringer; suture uses it in log events.
func (a *AdminServerService) String() string {
	return "admin-http"
}
