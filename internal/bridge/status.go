// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package bridge

import (
	"sync"
	"time"
)

// Bridge states reported by Status.
const (
	StateStarting   = "starting"
	StateConnecting = "connecting"
	StateConnected  = "connected"
	StateBackoff    = "backoff"
	StateStopped    = "stopped"
)

// Snapshot is a point-in-time copy of the bridge status.
type Snapshot struct {
	State          string     `json:"state"`
	Endpoint       string     `json:"endpoint"`
	Attempt        int        `json:"attempt"`
	SessionID      string     `json:"session_id,omitempty"`
	ChildPID       int        `json:"child_pid,omitempty"`
	ConnectedSince *time.Time `json:"connected_since,omitempty"`
	NextAttemptAt  *time.Time `json:"next_attempt_at,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
	Sessions       uint64     `json:"sessions_connected"`
	Breaker        string     `json:"circuit_breaker,omitempty"`
}

// Status mirrors supervisor and session state for the admin surface. It is
// written by the bridge and only read elsewhere; nothing in the reconnect
// logic reads it back. A nil *Status ignores all updates.
type Status struct {
	mu      sync.RWMutex
	snap    Snapshot
	breaker func() string
}

// NewStatus creates a Status for the given (redacted) endpoint.
func NewStatus(endpoint string) *Status {
	return &Status{snap: Snapshot{State: StateStarting, Endpoint: endpoint}}
}

// SetBreakerSource registers a function reporting the dial breaker state.
func (s *Status) SetBreakerSource(fn func() string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.breaker = fn
	s.mu.Unlock()
}

// Snapshot returns a copy of the current status.
func (s *Status) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{State: StateStarting}
	}
	s.mu.RLock()
	snap := s.snap
	breaker := s.breaker
	s.mu.RUnlock()

	if breaker != nil {
		snap.Breaker = breaker()
	}
	return snap
}

func (s *Status) update(fn func(*Snapshot)) {
	if s == nil {
		return
	}
	s.mu.Lock()
	fn(&s.snap)
	s.mu.Unlock()
}

func (s *Status) connecting(attempt int) {
	s.update(func(snap *Snapshot) {
		snap.State = StateConnecting
		snap.Attempt = attempt
		snap.NextAttemptAt = nil
	})
}

func (s *Status) connected(sessionID string, at time.Time) {
	s.update(func(snap *Snapshot) {
		snap.State = StateConnected
		snap.SessionID = sessionID
		snap.ConnectedSince = &at
		snap.Sessions++
	})
}

func (s *Status) childStarted(pid int) {
	s.update(func(snap *Snapshot) { snap.ChildPID = pid })
}

func (s *Status) sessionEnded(err error) {
	s.update(func(snap *Snapshot) {
		snap.SessionID = ""
		snap.ChildPID = 0
		snap.ConnectedSince = nil
		if err != nil {
			snap.LastError = err.Error()
		}
	})
}

func (s *Status) backoff(attempt int, until time.Time) {
	s.update(func(snap *Snapshot) {
		snap.State = StateBackoff
		snap.Attempt = attempt
		snap.NextAttemptAt = &until
	})
}

func (s *Status) stopped() {
	s.update(func(snap *Snapshot) {
		snap.State = StateStopped
		snap.NextAttemptAt = nil
	})
}
