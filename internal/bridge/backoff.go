// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package bridge

import "time"

// BackoffPolicy holds the reconnect delay parameters.
type BackoffPolicy struct {
	Initial time.Duration
	Max     time.Duration
	Jitter  float64 // extra fraction of the delay, drawn uniformly from [0, Jitter)
}

// DefaultBackoffPolicy is 1s doubling to 60s with up to 10% jitter.
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		Initial: time.Second,
		Max:     60 * time.Second,
		Jitter:  0.1,
	}
}

// Delay returns the unjittered delay after the given number of consecutive
// failures: min(Initial * 2^(failures-1), Max). Zero failures means no delay.
func (p BackoffPolicy) Delay(failures int) time.Duration {
	if failures <= 0 {
		return 0
	}
	d := p.Initial
	for i := 1; i < failures; i++ {
		if d >= p.Max/2 {
			return p.Max
		}
		d *= 2
	}
	return min(d, p.Max)
}

// BackoffState is the supervisor's reconnect bookkeeping. It is a plain value
// owned by one loop; nothing else reads or writes it.
type BackoffState struct {
	Policy  BackoffPolicy
	Attempt int           // consecutive failures since the last successful connect
	Delay   time.Duration // unjittered delay before the next attempt
}

// NewBackoffState returns a state with no failures recorded.
func NewBackoffState(policy BackoffPolicy) BackoffState {
	return BackoffState{Policy: policy, Delay: policy.Initial}
}

// Failed records one more failed session.
func (b *BackoffState) Failed() {
	b.Attempt++
	b.Delay = b.Policy.Delay(b.Attempt)
}

// Reset clears the failure streak after a successful connect.
func (b *BackoffState) Reset() {
	b.Attempt = 0
	b.Delay = b.Policy.Initial
}

// Wait applies jitter to the current delay. r must be in [0, 1); the result
// lies in [Delay, Delay*(1+Jitter)).
func (b BackoffState) Wait(r float64) time.Duration {
	return time.Duration(float64(b.Delay) * (1 + b.Policy.Jitter*r))
}
