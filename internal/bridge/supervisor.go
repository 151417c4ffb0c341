// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package bridge

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mcpbridge/internal/logging"
	"github.com/tomtom215/mcpbridge/internal/metrics"
)

// SessionRunner runs one session to completion. *Session implements it.
type SessionRunner interface {
	Run(ctx context.Context) (Report, error)
}

// Supervisor keeps a bridge session alive: it runs sessions one after the
// other, backing off exponentially while they fail and resetting the backoff
// once a connection is established.
type Supervisor struct {
	runner SessionRunner
	policy BackoffPolicy
	status *Status
	logger zerolog.Logger

	rand  func() float64
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSupervisor creates a Supervisor.
func NewSupervisor(runner SessionRunner, policy BackoffPolicy, status *Status) *Supervisor {
	return &Supervisor{
		runner: runner,
		policy: policy,
		status: status,
		logger: logging.WithComponent("supervisor"),
		rand:   rand.Float64,
		sleep:  sleepContext,
	}
}

// Run loops until ctx is cancelled and then returns ctx.Err(). At most one
// session is alive at any time.
func (s *Supervisor) Run(ctx context.Context) error {
	state := NewBackoffState(s.policy)

	for {
		if state.Attempt > 0 {
			wait := state.Wait(s.rand())
			metrics.RecordBackoff(state.Attempt, wait)
			s.status.backoff(state.Attempt, time.Now().Add(wait))
			s.logger.Info().
				Int("attempt", state.Attempt).
				Dur("wait", wait).
				Msg("Reconnecting after backoff")

			if err := s.sleep(ctx, wait); err != nil {
				s.status.stopped()
				return err
			}
		}

		if err := ctx.Err(); err != nil {
			s.status.stopped()
			return err
		}

		s.status.connecting(state.Attempt + 1)
		report, err := s.runner.Run(ctx)
		s.status.sessionEnded(err)

		if report.Connected {
			state.Reset()
			metrics.ResetAttempts()
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			s.status.stopped()
			s.logger.Info().Msg("Supervisor stopped")
			return ctxErr
		}

		state.Failed()
		s.logger.Warn().
			Err(err).
			Str("session_id", report.SessionID).
			Str("ended_by", report.EndedBy).
			Int("attempt", state.Attempt).
			Msg("Session ended")
	}
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
