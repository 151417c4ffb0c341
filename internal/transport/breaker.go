// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/mcpbridge/internal/logging"
	"github.com/tomtom215/mcpbridge/internal/metrics"
)

// ErrCircuitOpen is returned when the breaker rejects a dial without trying.
var ErrCircuitOpen = errors.New("transport: circuit open")

// BreakerSettings configure a BreakerDialer.
type BreakerSettings struct {
	Name             string
	FailureThreshold uint32        // consecutive failures that open the circuit
	OpenTimeout      time.Duration // time in open state before a half-open probe
}

// BreakerDialer wraps a ContextDialer with a circuit breaker. While open,
// Dial fails immediately with ErrCircuitOpen.
//
// The breaker uses real time for its open timeout. Tests exercise it with
// short timeouts rather than a fake clock.
type BreakerDialer struct {
	next ContextDialer
	cb   *gobreaker.CircuitBreaker[*Conn]
	name string
}

var _ ContextDialer = (*BreakerDialer)(nil)

// NewBreakerDialer creates a BreakerDialer around next.
func NewBreakerDialer(next ContextDialer, settings BreakerSettings) *BreakerDialer {
	name := settings.Name
	if name == "" {
		name = "websocket-dial"
	}
	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}

	// Initialize circuit breaker state metrics
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[*Conn](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1, // a single probe dial in half-open state
		Timeout:     settings.OpenTimeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			shouldTrip := counts.ConsecutiveFailures >= threshold
			if shouldTrip {
				logging.Warn().
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		// A dial aborted by shutdown says nothing about the endpoint.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &BreakerDialer{next: next, cb: cb, name: name}
}

// Dial dials through the breaker.
func (b *BreakerDialer) Dial(ctx context.Context, url string) (*Conn, error) {
	conn, err := b.cb.Execute(func() (*Conn, error) {
		return b.next.Dial(ctx, url)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			return nil, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(b.cb.Counts().ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	return conn, nil
}

// State returns the breaker state as "closed", "half-open" or "open".
func (b *BreakerDialer) State() string {
	return b.cb.State().String()
}

// stateToFloat converts circuit breaker state to a gauge value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
