// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

/*
Package bridge connects a remote WebSocket endpoint to a local child process
speaking newline-delimited messages on its standard streams.

# Session

A Session is one connection attempt. Run dials the endpoint, spawns the
child and starts three relays:

  - inbound: each WebSocket message is written to the child's stdin followed
    by a newline. Binary frames must decode as UTF-8.
  - outbound: each line the child writes to stdout is sent as one text
    message, without its line terminator.
  - diagnostics: the child's stderr is copied verbatim to a local sink.

The first relay to finish ends the session. Teardown closes the child's
stdin, sends SIGTERM, kills the child after the grace period, closes the
WebSocket and waits for every relay to return. Nothing outlives Run.

# Supervisor

Supervisor runs sessions back to back until its context is cancelled.
Between failures it sleeps according to a BackoffPolicy:

	delay(n) = min(Initial * 2^(n-1), Max)
	wait     = delay(n) * (1 + Jitter*r), r in [0, 1)

A session that got connected resets the failure count, so a long-lived
session that drops reconnects after roughly Initial again.

	status := bridge.NewStatus(config.RedactURL(cfg.Endpoint.URL))
	session := bridge.NewSession(sessionCfg, endpoint, dialer, spawner, status)
	sup := bridge.NewSupervisor(session, bridge.DefaultBackoffPolicy(), status)
	err := sup.Run(ctx) // returns ctx.Err() on shutdown

Status mirrors the current state for the admin endpoints. It is write-only
from the bridge's point of view.
*/
package bridge
