// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

// Package process owns the lifecycle of a single child process: spawn with
// three independent pipes, graceful SIGTERM, forced kill after a grace
// period, and reaping.
//
//	p, err := process.Start(process.Spec{Command: "python", Args: []string{"server.py"}})
//	if err != nil {
//	    return err // wraps process.ErrSpawn
//	}
//	defer p.Release()
//	forced, err := p.Shutdown(5 * time.Second)
//
// Every teardown method is idempotent and safe after the child has exited
// on its own. On Windows SIGTERM cannot be delivered, so Shutdown always
// escalates to Kill.
package process
