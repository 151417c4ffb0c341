// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

/*
Package transport is the WebSocket client side of the bridge.

A Dialer opens gorilla/websocket connections with a handshake timeout,
optional permessage-deflate and a keepalive loop: pings every PingInterval,
with the read deadline pushed out by PongWait on each pong or message. A
missed pong surfaces as a Receive error.

	d := transport.NewDialer(transport.Options{
	    HandshakeTimeout: 10 * time.Second,
	    WriteTimeout:     10 * time.Second,
	    PingInterval:     30 * time.Second,
	    PongWait:         60 * time.Second,
	})
	conn, err := d.Dial(ctx, "wss://api.example.com/mcp/?token=...")

BreakerDialer adds a sony/gobreaker circuit breaker in front of any
ContextDialer. After FailureThreshold consecutive failures it rejects dials
with ErrCircuitOpen until OpenTimeout elapses, then lets one probe through.

Receive and Send return errors wrapping ErrClosed once the connection was
closed locally or the peer sent a normal close frame; any other error means
the connection broke.
*/
package transport
