// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrStreamClosed is the cause recorded when a relay's source reached
	// end of stream without an error.
	ErrStreamClosed = errors.New("stream closed")

	// ErrInvalidUTF8 is returned when a binary message does not decode as UTF-8.
	ErrInvalidUTF8 = errors.New("message is not valid UTF-8")
)

// ConnectError reports that the transport could not be established.
type ConnectError struct {
	URL string // redacted
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.URL, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// SpawnError reports that the child process could not be started.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// RelayError reports the relay whose termination ended a session.
type RelayError struct {
	Direction string
	Err       error
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("%s relay: %v", e.Direction, e.Err)
}

func (e *RelayError) Unwrap() error { return e.Err }
