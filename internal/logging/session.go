// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SessionLogger provides domain logging for bridge sessions. Every method
// takes the session context so lines carry the session id.
type SessionLogger struct {
	logger zerolog.Logger
}

// NewSessionLogger creates a SessionLogger on the global logger.
func NewSessionLogger() *SessionLogger {
	return &SessionLogger{
		logger: With().Str("component", "session").Logger(),
	}
}

// NewSessionLoggerWithLogger creates a SessionLogger with a custom logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value (copy-on-write semantics)
func NewSessionLoggerWithLogger(logger zerolog.Logger) *SessionLogger {
	return &SessionLogger{
		logger: logger.With().Str("component", "session").Logger(),
	}
}

// Logger returns the underlying component logger, for code that logs through
// Ctx with a context built by ContextWithLogger.
func (l *SessionLogger) Logger() zerolog.Logger {
	return l.logger
}

// loggerWithContext returns a logger with context fields added.
func (l *SessionLogger) loggerWithContext(ctx context.Context) zerolog.Logger {
	if id := SessionIDFromContext(ctx); id != "" {
		return l.logger.With().Str("session_id", id).Logger()
	}
	return l.logger
}

// LogConnected logs an established transport connection.
func (l *SessionLogger) LogConnected(ctx context.Context, endpoint string) {
	logger := l.loggerWithContext(ctx)
	logger.Info().Str("endpoint", endpoint).Msg("Connected to endpoint")
}

// LogChildStarted logs a spawned child process.
func (l *SessionLogger) LogChildStarted(ctx context.Context, pid int, command string) {
	logger := l.loggerWithContext(ctx)
	logger.Info().Int("pid", pid).Str("command", command).Msg("Child process started")
}

// LogRelayed logs one relayed unit at debug level with a truncated preview.
// The preview is only built when debug logging is enabled.
func (l *SessionLogger) LogRelayed(ctx context.Context, direction string, data []byte) {
	logger := l.loggerWithContext(ctx)
	if event := logger.Debug(); event.Enabled() {
		event.Str("direction", direction).
			Int("bytes", len(data)).
			Str("preview", Preview(string(data))).
			Msg("Relayed")
	}
}

// LogRelayEnded logs the termination of one relay. A nil error is a normal
// end of stream.
func (l *SessionLogger) LogRelayEnded(ctx context.Context, direction string, err error) {
	logger := l.loggerWithContext(ctx)
	if err != nil {
		logger.Warn().Str("direction", direction).Err(err).Msg("Relay failed")
		return
	}
	logger.Info().Str("direction", direction).Msg("Relay reached end of stream")
}

// LogTeardown logs the end of child shutdown.
func (l *SessionLogger) LogTeardown(ctx context.Context, pid int, forced bool, took time.Duration) {
	logger := l.loggerWithContext(ctx)
	event := logger.Info()
	if forced {
		event = logger.Warn()
	}
	event.Int("pid", pid).
		Bool("forced", forced).
		Dur("took", took).
		Msg("Child process stopped")
}

// LogSessionEnded logs the end of a session with its total lifetime.
func (l *SessionLogger) LogSessionEnded(ctx context.Context, endedBy string, lifetime time.Duration) {
	logger := l.loggerWithContext(ctx)
	logger.Info().Str("ended_by", endedBy).Dur("lifetime", lifetime).Msg("Session ended")
}
