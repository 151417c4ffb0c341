// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

/*
Package supervisor provides process supervision for mcpbridge using suture v4.

# Overview

	RootSupervisor ("mcpbridge")
	├── BridgeSupervisor ("bridge-layer")
	│   └── BridgeService (reconnect loop)
	└── AdminSupervisor ("admin-layer")
	    └── AdminServerService (if ADMIN_ENABLED)

The reconnect loop already handles connection failures with its own
exponential backoff. Suture sits one level above that: it restarts the loop
if it crashes and keeps a misbehaving admin server from taking the bridge
down with it.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddBridgeService(services.NewBridgeService(bridgeSupervisor))
	tree.AddAdminService(services.NewAdminServerService(adminServer, "127.0.0.1:9464", 5*time.Second))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh

# Configuration

TreeConfig mirrors suture.Spec. Zero values take suture's defaults
(5 failures, 30s decay, 15s backoff, 10s shutdown timeout). ShutdownTimeout
should exceed the child process grace period, or a slow child shows up in
UnstoppedServiceReport.

Supervisor events are logged through sutureslog, which takes an *slog.Logger;
logging.NewSlogLogger routes them into zerolog.
*/
package supervisor
