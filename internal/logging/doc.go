// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

// Package logging provides centralized zerolog-based structured logging for MCPBridge.
//
// All bridge log output goes to stderr. The child's own stderr is forwarded
// verbatim to the same stream, interleaved with these log lines.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "console"})
//	logging.Info().Str("endpoint", url).Msg("Connecting")
//
// Session-scoped logging carries the session id automatically:
//
//	ctx = logging.ContextWithSessionID(ctx, logging.GenerateSessionID())
//	logging.Ctx(ctx).Warn().Err(err).Msg("Relay failed")
//
// SessionLogger wraps the recurring session lifecycle lines (connected, child
// started, relay ended, teardown) so they share field names.
//
// # Configuration
//
// Environment Variables (mapped through the config package):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: console)
//   - LOG_CALLER: true/false (default: false)
//
// Relayed payloads are only logged at debug level and are shortened with
// Preview first.
//
// # Suture Integration
//
// SlogHandler adapts zerolog to slog.Handler so sutureslog can report
// service starts, failures and restarts through the same logger.
package logging
