// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

func TestBridgeService_Interface(t *testing.T) {
	var _ suture.Service = (*BridgeService)(nil)
}

func TestBridgeService_Serve(t *testing.T) {
	tests := []struct {
		name    string
		run     func(ctx context.Context) error
		cancel  bool
		wantErr error
		wantMsg string
	}{
		{
			name: "cancellation returns context error",
			run: func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
			cancel:  true,
			wantErr: context.Canceled,
		},
		{
			name:    "unexpected error is wrapped",
			run:     func(context.Context) error { return errors.New("boom") },
			wantMsg: "bridge: boom",
		},
		{
			name:    "nil return is a crash",
			run:     func(context.Context) error { return nil },
			wantMsg: "bridge: reconnect loop exited",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewBridgeService(runnerFunc(tt.run))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancel {
				cancel()
			}

			err := svc.Serve(ctx)
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Serve() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && (err == nil || err.Error() != tt.wantMsg) {
				t.Errorf("Serve() error = %v, want %q", err, tt.wantMsg)
			}
		})
	}
}

func TestBridgeService_RestartedAfterCrash(t *testing.T) {
	var runs atomic.Int32
	svc := NewBridgeService(runnerFunc(func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			panic("relay exploded")
		}
		<-ctx.Done()
		return ctx.Err()
	}))

	sup := suture.New("test-sup", suture.Spec{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("bridge service was not restarted after panic")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	<-errCh
}

func TestBridgeService_String(t *testing.T) {
	if got := NewBridgeService(nil).String(); got != "bridge" {
		t.Errorf("String() = %q, want bridge", got)
	}
}
