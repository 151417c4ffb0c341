// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package services

import (
	"context"
	"errors"
	"fmt"
)

// BridgeRunner is satisfied by *bridge.Supervisor.
type BridgeRunner interface {
	Run(ctx context.Context) error
}

// BridgeService runs the reconnect loop under suture.
//
// The loop handles its own retries and only returns on cancellation, so any
// other return is a crash (including a recovered panic) and suture restarts
// the service.
type BridgeService struct {
	runner BridgeRunner
	name   string
}

// NewBridgeService wraps runner.
func NewBridgeService(runner BridgeRunner) *BridgeService {
	return &BridgeService{runner: runner, name: "bridge"}
}

// Serve implements suture.Service.
func (b *BridgeService) Serve(ctx context.Context) error {
	err := b.runner.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		err = errors.New("reconnect loop exited")
	}
	return fmt.Errorf("bridge: %w", err)
}

// String implements fmt.Stringer.
func (b *BridgeService) String() string {
	return b.name
}
