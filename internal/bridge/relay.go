// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package bridge

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/tomtom215/mcpbridge/internal/logging"
	"github.com/tomtom215/mcpbridge/internal/metrics"
	"github.com/tomtom215/mcpbridge/internal/transport"
)

// Relay directions.
const (
	DirectionInbound     = metrics.DirectionInbound     // transport -> child stdin
	DirectionOutbound    = metrics.DirectionOutbound    // child stdout -> transport
	DirectionDiagnostics = metrics.DirectionDiagnostics // child stderr -> local sink
)

// diagnosticsChunk is the read size for the stderr copy loop.
const diagnosticsChunk = 32 * 1024

// relayResult is what every relay goroutine reports exactly once.
// A nil err means the source reached a normal end of stream.
type relayResult struct {
	direction string
	err       error
}

// isStreamEnd reports whether err means the other side went away in an
// orderly way rather than failing.
func isStreamEnd(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, transport.ErrClosed)
}

// relayInbound forwards each transport message to the child's stdin as one
// newline-terminated line.
func relayInbound(ctx context.Context, src Transport, dst io.Writer, limiter *rate.Limiter, log *logging.SessionLogger) error {
	for {
		msg, err := src.Receive()
		if err != nil {
			if isStreamEnd(err) {
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		}

		if msg.Binary && !utf8.Valid(msg.Data) {
			return ErrInvalidUTF8
		}

		if limiter != nil {
			start := time.Now()
			if err := limiter.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("throttle: %w", err)
			}
			metrics.RecordThrottleWait(time.Since(start))
		}

		line := make([]byte, 0, len(msg.Data)+1)
		line = append(line, msg.Data...)
		line = append(line, '\n')
		if _, err := dst.Write(line); err != nil {
			if isStreamEnd(err) {
				return nil
			}
			return fmt.Errorf("write stdin: %w", err)
		}

		metrics.RecordRelayUnit(DirectionInbound, len(msg.Data))
		log.LogRelayed(ctx, DirectionInbound, msg.Data)
	}
}

// relayOutbound sends each stdout line to the transport as one text message,
// without its line terminator ("\n" or "\r\n"): the message boundary already
// delimits the JSON-RPC frame, so peers never see a trailing newline. A final
// unterminated line is still sent.
func relayOutbound(ctx context.Context, src io.Reader, dst Transport, maxLine int, log *logging.SessionLogger) error {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLine)), maxLine)

	for scanner.Scan() {
		line := scanner.Bytes()
		if err := dst.Send(string(line)); err != nil {
			if isStreamEnd(err) {
				return nil
			}
			return fmt.Errorf("send: %w", err)
		}

		metrics.RecordRelayUnit(DirectionOutbound, len(line))
		log.LogRelayed(ctx, DirectionOutbound, line)
	}

	if err := scanner.Err(); err != nil {
		if isStreamEnd(err) {
			return nil
		}
		return fmt.Errorf("read stdout: %w", err)
	}
	return nil
}

// relayDiagnostics copies the child's stderr to sink verbatim.
//
// With keepDraining set, a failing sink does not end the relay: the rest of
// stderr is discarded so the child never blocks on a full pipe, and the sink
// error is returned once stderr closes.
func relayDiagnostics(ctx context.Context, src io.Reader, sink io.Writer, keepDraining bool) error {
	buf := make([]byte, diagnosticsChunk)
	var sinkErr error
	for {
		n, err := src.Read(buf)
		if n > 0 && sinkErr == nil {
			if _, werr := sink.Write(buf[:n]); werr != nil {
				sinkErr = fmt.Errorf("write diagnostics: %w", werr)
				if !keepDraining {
					return sinkErr
				}
				logging.Ctx(ctx).Warn().Err(werr).Msg("Diagnostics sink failed, discarding child stderr")
			} else {
				metrics.RecordRelayBytes(DirectionDiagnostics, int64(n))
			}
		}
		if err != nil {
			if isStreamEnd(err) {
				return sinkErr
			}
			return fmt.Errorf("read stderr: %w", err)
		}
	}
}

// newInboundLimiter returns nil when throttling is disabled.
func newInboundLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
