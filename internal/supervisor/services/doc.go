// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

/*
Package services adapts mcpbridge components to suture.Service.

BridgeService (bridge layer):
  - Runs bridge.Supervisor.Run until cancellation
  - Any other return, including a recovered panic, is a crash and is restarted

AdminServerService (admin layer):
  - Binds the admin address itself, so a busy port is a restartable failure
  - Logs the bound address, which matters when ADMIN_ADDR uses port 0
  - Drains in-flight requests for at most the shutdown timeout

Return behavior follows suture v4: returning the context error on shutdown,
an error to request a restart, suture.ErrDoNotRestart to stop for good.
*/
package services
