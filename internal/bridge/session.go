// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package bridge

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/tomtom215/mcpbridge/internal/logging"
	"github.com/tomtom215/mcpbridge/internal/metrics"
	"github.com/tomtom215/mcpbridge/internal/transport"
)

// Transport is a connected, message-oriented channel to the remote peer.
// Receive is called from one goroutine and Send from another.
type Transport interface {
	Receive() (transport.Message, error)
	Send(text string) error
	Close() error
}

// Dialer establishes transports.
type Dialer interface {
	Dial(ctx context.Context, url string) (Transport, error)
}

// Child is a running child process.
type Child interface {
	PID() int
	Done() <-chan struct{}
	Stdin() io.Writer
	Stdout() io.Reader
	Stderr() io.Reader
	CloseInput() error
	Shutdown(grace time.Duration) (forced bool, err error)
	Release()
}

// Spawner starts child processes.
type Spawner interface {
	Spawn(ctx context.Context) (Child, error)
	Command() string
}

// SessionConfig holds per-session settings.
type SessionConfig struct {
	URL         string
	GracePeriod time.Duration

	MaxLineBytes           int
	InboundRate            float64 // messages per second, 0 is unlimited
	InboundBurst           int
	DiagnosticsEndsSession bool
	DiagnosticsSink        io.Writer // default os.Stderr
}

// Report describes how one session went. Connected tells the supervisor
// whether to reset its backoff.
type Report struct {
	SessionID string
	Connected bool
	PID       int
	StartedAt time.Time
	Duration  time.Duration
	EndedBy   string // a relay direction, "connect", "spawn" or "shutdown"
}

// Session end causes besides relay directions.
const (
	EndedByConnect  = "connect"
	EndedBySpawn    = "spawn"
	EndedByShutdown = "shutdown"
)

// Session runs one connection: one transport, one child, three relays.
// A Session value is reusable; every Run is a fresh connection.
type Session struct {
	cfg      SessionConfig
	endpoint string // redacted URL for logs and errors
	dialer   Dialer
	spawner  Spawner
	status   *Status
	log      *logging.SessionLogger
}

// NewSession creates a Session. endpoint is the URL as it may appear in logs.
func NewSession(cfg SessionConfig, endpoint string, dialer Dialer, spawner Spawner, status *Status) *Session {
	if cfg.DiagnosticsSink == nil {
		cfg.DiagnosticsSink = os.Stderr
	}
	if cfg.MaxLineBytes <= 0 {
		cfg.MaxLineBytes = 4 << 20
	}
	if endpoint == "" {
		endpoint = cfg.URL
	}
	return &Session{
		cfg:      cfg,
		endpoint: endpoint,
		dialer:   dialer,
		spawner:  spawner,
		status:   status,
		log:      logging.NewSessionLogger(),
	}
}

// Run connects, spawns the child, relays until the first relay ends or ctx
// is cancelled, then tears everything down. It returns only after the child
// has exited, the transport is closed and every relay goroutine has finished.
//
// The returned error is a *ConnectError, *SpawnError, *RelayError or the
// context error on shutdown.
func (s *Session) Run(ctx context.Context) (report Report, err error) {
	report = Report{
		SessionID: logging.GenerateSessionID(),
		StartedAt: time.Now(),
	}
	ctx = logging.ContextWithLogger(ctx, s.log.Logger())
	ctx = logging.ContextWithSessionID(ctx, report.SessionID)

	conn, err := s.dialer.Dial(ctx, s.cfg.URL)
	if err != nil {
		report.EndedBy = EndedByConnect
		report.Duration = time.Since(report.StartedAt)
		metrics.RecordSessionEnd(EndedByConnect, false, 0)
		return report, &ConnectError{URL: s.endpoint, Err: err}
	}

	var closeOnce sync.Once
	closeTransport := func() {
		closeOnce.Do(func() { _ = conn.Close() })
	}
	defer closeTransport()

	report.Connected = true
	metrics.RecordSessionStart()
	s.status.connected(report.SessionID, report.StartedAt)
	s.log.LogConnected(ctx, s.endpoint)

	defer func() {
		report.Duration = time.Since(report.StartedAt)
		metrics.RecordSessionEnd(report.EndedBy, true, report.Duration)
		s.log.LogSessionEnded(ctx, report.EndedBy, report.Duration)
	}()

	child, err := s.spawner.Spawn(ctx)
	metrics.RecordSpawn(err)
	if err != nil {
		report.EndedBy = EndedBySpawn
		return report, &SpawnError{Command: s.spawner.Command(), Err: err}
	}

	report.PID = child.PID()
	s.status.childStarted(report.PID)
	s.log.LogChildStarted(ctx, report.PID, s.spawner.Command())

	var stopOnce sync.Once
	stopChild := func() {
		stopOnce.Do(func() { s.stopChild(ctx, child) })
	}
	defer child.Release()
	defer stopChild()

	relayCtx, cancelRelays := context.WithCancel(ctx)
	defer cancelRelays()

	results := make(chan relayResult, 3)
	limiter := newInboundLimiter(s.cfg.InboundRate, s.cfg.InboundBurst)

	go func() {
		results <- relayResult{DirectionInbound, relayInbound(relayCtx, conn, child.Stdin(), limiter, s.log)}
	}()
	go func() {
		results <- relayResult{DirectionOutbound, relayOutbound(relayCtx, child.Stdout(), conn, s.cfg.MaxLineBytes, s.log)}
	}()
	go func() {
		results <- relayResult{DirectionDiagnostics, relayDiagnostics(relayCtx, child.Stderr(), s.cfg.DiagnosticsSink, !s.cfg.DiagnosticsEndsSession)}
	}()
	pending := 3

	var endErr error
	for endErr == nil {
		select {
		case res := <-results:
			pending--
			s.log.LogRelayEnded(ctx, res.direction, res.err)
			if res.err != nil {
				metrics.RecordRelayError(res.direction)
			}
			if res.direction == DirectionDiagnostics && !s.cfg.DiagnosticsEndsSession {
				continue
			}
			report.EndedBy = res.direction
			cause := res.err
			if cause == nil {
				cause = ErrStreamClosed
			}
			endErr = &RelayError{Direction: res.direction, Err: cause}
		case <-ctx.Done():
			report.EndedBy = EndedByShutdown
			endErr = ctx.Err()
		}
	}

	// Teardown order: child first, then transport, then the read pipes, so
	// every relay still running hits end of stream.
	cancelRelays()
	stopChild()
	closeTransport()
	child.Release()
	for ; pending > 0; pending-- {
		<-results
	}

	return report, endErr
}

// stopChild closes stdin, sends SIGTERM, and kills the child if it is still
// running after the grace period.
func (s *Session) stopChild(ctx context.Context, child Child) {
	start := time.Now()
	exited := false
	select {
	case <-child.Done():
		exited = true
	default:
	}

	forced, err := child.Shutdown(s.cfg.GracePeriod)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Int("pid", child.PID()).Msg("Failed to stop child process")
	}

	mode := "graceful"
	switch {
	case exited:
		mode = "exited"
	case forced:
		mode = "killed"
	}
	metrics.RecordTermination(mode)
	s.log.LogTeardown(ctx, child.PID(), forced, time.Since(start))
}
