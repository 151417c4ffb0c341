// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/mcpbridge/internal/logging"
	"github.com/tomtom215/mcpbridge/internal/validation"
)

// Validate checks struct constraints first, then the cross-field rules the
// tags cannot express.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	validators := []func() error{
		c.validateEndpoint,
		c.validateReconnect,
		c.validateProcess,
		c.validateLogging,
	}

	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validateEndpoint() error {
	if err := validateWebSocketURL(c.Endpoint.URL, "MCP_ENDPOINT"); err != nil {
		return err
	}
	if c.Endpoint.PingInterval > 0 && c.Endpoint.PongWait > 0 && c.Endpoint.PongWait <= c.Endpoint.PingInterval {
		return fmt.Errorf("MCP_PONG_WAIT (%v) must be greater than MCP_PING_INTERVAL (%v)",
			c.Endpoint.PongWait, c.Endpoint.PingInterval)
	}
	return nil
}

func (c *Config) validateReconnect() error {
	if c.Reconnect.MaxBackoff < c.Reconnect.InitialBackoff {
		return fmt.Errorf("RECONNECT_MAX_BACKOFF (%v) must not be less than RECONNECT_INITIAL_BACKOFF (%v)",
			c.Reconnect.MaxBackoff, c.Reconnect.InitialBackoff)
	}
	return nil
}

// teardownMargin is the time a stop needs beyond the grace period: SIGKILL,
// reaping the child and closing the WebSocket.
const teardownMargin = time.Second

func (c *Config) validateProcess() error {
	if strings.TrimSpace(c.Process.Command[0]) == "" {
		return fmt.Errorf("process command must not start with an empty program name")
	}
	// The supervisor abandons a service that outlives ShutdownTimeout, which
	// would leave a child that ignores SIGTERM running after we exit.
	if c.Process.GracePeriod+teardownMargin >= c.Supervisor.ShutdownTimeout {
		return fmt.Errorf("PROCESS_GRACE_PERIOD (%v) plus %v must be less than SUPERVISOR_SHUTDOWN_TIMEOUT (%v)",
			c.Process.GracePeriod, teardownMargin, c.Supervisor.ShutdownTimeout)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a known level (trace, debug, info, warn, error, fatal, panic, off)",
			c.Logging.Level)
	}
	return nil
}
