// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package bridge

import (
	"context"

	"github.com/tomtom215/mcpbridge/internal/process"
	"github.com/tomtom215/mcpbridge/internal/transport"
)

// WebSocketDialer adapts a transport.ContextDialer (plain or breaker-wrapped)
// to Dialer.
type WebSocketDialer struct {
	Next transport.ContextDialer
}

// Dial implements Dialer.
func (d WebSocketDialer) Dial(ctx context.Context, url string) (Transport, error) {
	conn, err := d.Next.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// ProcessSpawner starts children from a fixed process.Spec.
type ProcessSpawner struct {
	Spec process.Spec
}

// Spawn implements Spawner. The child is not bound to ctx; Session stops it
// explicitly so the grace period is honored.
func (s ProcessSpawner) Spawn(_ context.Context) (Child, error) {
	p, err := process.Start(s.Spec)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Command implements Spawner.
func (s ProcessSpawner) Command() string {
	return s.Spec.String()
}
