// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package config

import (
	"time"
)

// Config holds all bridge configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every optional setting
//  2. Config File: Optional YAML file (--config, CONFIG_PATH or mcpbridge.yaml)
//  3. Dotenv File: Optional .env file (--env-file, default ".env")
//  4. Environment Variables: Override any setting
//  5. Command line: positional arguments replace process.command
//
// Only two values have no usable default: the endpoint URL (MCP_ENDPOINT) and
// the child command. Load fails if either is missing.
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Endpoint   EndpointConfig   `koanf:"endpoint"`
	Reconnect  ReconnectConfig  `koanf:"reconnect"`
	Breaker    BreakerConfig    `koanf:"breaker"`
	Process    ProcessConfig    `koanf:"process"`
	Relay      RelayConfig      `koanf:"relay"`
	Admin      AdminConfig      `koanf:"admin"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// EndpointConfig describes the remote WebSocket endpoint.
//
// Environment Variables:
//   - MCP_ENDPOINT: ws:// or wss:// URL, usually carrying an access token (required)
//   - MCP_HANDSHAKE_TIMEOUT: Opening handshake timeout (default: 10s)
//   - MCP_WRITE_TIMEOUT: Per-message write deadline (default: 10s)
//   - MCP_PING_INTERVAL: Keepalive ping interval, 0 disables pings (default: 30s)
//   - MCP_PONG_WAIT: Read deadline extended by each pong, 0 disables (default: 60s)
//   - MCP_READ_LIMIT: Maximum inbound message size in bytes, 0 is unlimited (default: 0)
//   - MCP_COMPRESSION: Negotiate permessage-deflate (default: false)
type EndpointConfig struct {
	URL              string        `koanf:"url" validate:"required,url"`
	HandshakeTimeout time.Duration `koanf:"handshake_timeout" validate:"gt=0"`
	WriteTimeout     time.Duration `koanf:"write_timeout" validate:"gt=0"`
	PingInterval     time.Duration `koanf:"ping_interval" validate:"gte=0"`
	PongWait         time.Duration `koanf:"pong_wait" validate:"gte=0"`
	ReadLimit        int64         `koanf:"read_limit" validate:"gte=0"`
	Compression      bool          `koanf:"compression"`
}

// ReconnectConfig controls the backoff between connection attempts.
// The delay after the n-th consecutive failure is
// min(InitialBackoff * 2^(n-1), MaxBackoff) scaled by a factor in [1, 1+Jitter).
//
// Environment Variables:
//   - RECONNECT_INITIAL_BACKOFF (default: 1s)
//   - RECONNECT_MAX_BACKOFF (default: 60s)
//   - RECONNECT_JITTER: Fraction in [0,1] (default: 0.1)
type ReconnectConfig struct {
	InitialBackoff time.Duration `koanf:"initial_backoff" validate:"gt=0"`
	MaxBackoff     time.Duration `koanf:"max_backoff" validate:"gt=0"`
	Jitter         float64       `koanf:"jitter" validate:"gte=0,lte=1"`
}

// BreakerConfig configures the optional circuit breaker around dialing.
// While open, connection attempts fail immediately and count as failures,
// so the reconnect backoff still applies.
//
// Environment Variables:
//   - BREAKER_ENABLED (default: false)
//   - BREAKER_FAILURE_THRESHOLD: Consecutive dial failures that open the circuit (default: 5)
//   - BREAKER_OPEN_TIMEOUT: Time before a half-open probe (default: 2m)
type BreakerConfig struct {
	Enabled          bool          `koanf:"enabled"`
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"gte=1"`
	OpenTimeout      time.Duration `koanf:"open_timeout" validate:"gt=0"`
}

// ProcessConfig describes the child process.
//
// Environment Variables:
//   - MCP_COMMAND: Whitespace separated command line (positional arguments take precedence)
//   - MCP_INTERPRETER: Program prepended to the command, e.g. "python"
//   - MCP_WORK_DIR: Working directory for the child
//   - PROCESS_GRACE_PERIOD: Wait after SIGTERM before SIGKILL (default: 5s)
type ProcessConfig struct {
	Command     []string      `koanf:"command" validate:"min=1"`
	Interpreter string        `koanf:"interpreter"`
	WorkDir     string        `koanf:"work_dir"`
	GracePeriod time.Duration `koanf:"grace_period" validate:"gt=0"`
}

// Argv returns the full argument vector including the interpreter, if any.
func (p ProcessConfig) Argv() []string {
	argv := make([]string, 0, len(p.Command)+1)
	if p.Interpreter != "" {
		argv = append(argv, p.Interpreter)
	}
	return append(argv, p.Command...)
}

// RelayConfig tunes the three copy loops.
//
// Environment Variables:
//   - RELAY_MAX_LINE_BYTES: Longest stdout line accepted (default: 4MiB)
//   - RELAY_INBOUND_RATE: Inbound messages per second, 0 is unlimited (default: 0)
//   - RELAY_INBOUND_BURST: Limiter burst size (default: 10)
//   - RELAY_DIAGNOSTICS_ENDS_SESSION: stderr closure ends the session (default: true)
type RelayConfig struct {
	MaxLineBytes           int     `koanf:"max_line_bytes" validate:"gte=1024"`
	InboundRate            float64 `koanf:"inbound_rate" validate:"gte=0"`
	InboundBurst           int     `koanf:"inbound_burst" validate:"gte=0"`
	DiagnosticsEndsSession bool    `koanf:"diagnostics_ends_session"`
}

// AdminConfig configures the optional admin HTTP server.
//
// Environment Variables:
//   - ADMIN_ENABLED (default: false)
//   - ADMIN_ADDR (default: 127.0.0.1:9464)
//   - ADMIN_RATE_LIMIT: Requests per minute per client IP, 0 disables (default: 120)
type AdminConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Addr      string `koanf:"addr" validate:"required,hostname_port"`
	RateLimit int    `koanf:"rate_limit" validate:"gte=0"`
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: console)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"required"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// SupervisorConfig tunes the suture service tree.
//
// Environment Variables:
//   - SUPERVISOR_FAILURE_THRESHOLD (default: 5)
//   - SUPERVISOR_FAILURE_DECAY: Seconds (default: 30)
//   - SUPERVISOR_FAILURE_BACKOFF (default: 15s)
//   - SUPERVISOR_SHUTDOWN_TIMEOUT (default: 10s)
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold" validate:"gt=0"`
	FailureDecay     float64       `koanf:"failure_decay" validate:"gt=0"`
	FailureBackoff   time.Duration `koanf:"failure_backoff" validate:"gt=0"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}
