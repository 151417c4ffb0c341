// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

// Package main is the entry point for mcpbridge.
//
// mcpbridge connects a remote WebSocket endpoint to a local MCP tool server
// that speaks newline-delimited JSON-RPC on stdin/stdout. Every inbound
// WebSocket message becomes one line on the child's stdin, every stdout line
// becomes one outbound message, and the child's stderr is passed through to
// ours. When either side goes away the child is stopped and the bridge
// reconnects with exponential backoff.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 (highest priority wins):
//   - Positional arguments: the child command
//   - Environment variables (MCP_ENDPOINT, MCP_COMMAND, ...)
//   - Dotenv file (--env-file, default .env)
//   - YAML file (--config, CONFIG_PATH or mcpbridge.yaml)
//   - Built-in defaults
//
// # Example Usage
//
//	export MCP_ENDPOINT='wss://api.example.com/mcp/?token=...'
//	mcpbridge python calculator_server.py
//
// # Signal Handling
//
// SIGINT and SIGTERM stop the reconnect loop, terminate the child (SIGTERM,
// then SIGKILL after PROCESS_GRACE_PERIOD) and close the WebSocket.
//
// Logs go to stderr; stdout is never written.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/tomtom215/mcpbridge/internal/bridge"
	"github.com/tomtom215/mcpbridge/internal/config"
	"github.com/tomtom215/mcpbridge/internal/logging"
	"github.com/tomtom215/mcpbridge/internal/supervisor"
	"github.com/tomtom215/mcpbridge/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if opts.version {
		fmt.Fprintf(os.Stderr, "mcpbridge %s\n", version)
		return
	}

	cfg, err := config.Load(opts.load)
	if err != nil {
		// Config not yet available; the default logger writes to stderr.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("endpoint", config.RedactURL(cfg.Endpoint.URL)).
		Strs("command", cfg.Process.Argv()).
		Msg("Starting mcpbridge")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: cfg.Supervisor.FailureThreshold,
		FailureDecay:     cfg.Supervisor.FailureDecay,
		FailureBackoff:   cfg.Supervisor.FailureBackoff,
		ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	status := bridge.NewStatus(config.RedactURL(cfg.Endpoint.URL))
	tree.AddBridgeService(services.NewBridgeService(initBridge(cfg, status)))

	if server := initAdminServer(cfg, status); server != nil {
		tree.AddAdminService(services.NewAdminServerService(server, cfg.Admin.Addr, cfg.Supervisor.ShutdownTimeout))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	// The channel receives exactly one value and is never closed.
	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutting down")
		treeErr = <-errCh
	case treeErr = <-errCh:
	}
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Error().Err(treeErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("mcpbridge stopped")
}
