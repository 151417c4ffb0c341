// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/mcpbridge/internal/logging"
)

// ErrClosed is returned by Receive and Send once the connection has been
// closed, either locally or by a normal close frame from the peer.
var ErrClosed = errors.New("transport: connection closed")

// closeGrace bounds the write of the close frame during Close.
const closeGrace = time.Second

// Message is one WebSocket data frame.
type Message struct {
	Binary bool
	Data   []byte
}

// Options configure a Dialer and the connections it produces.
type Options struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	PingInterval     time.Duration // 0 disables keepalive pings
	PongWait         time.Duration // 0 disables the read deadline
	ReadLimit        int64         // 0 is unlimited
	Compression      bool
	Header           http.Header
}

// ContextDialer opens connections. Dialer and BreakerDialer implement it.
type ContextDialer interface {
	Dial(ctx context.Context, url string) (*Conn, error)
}

// Dialer opens WebSocket client connections.
type Dialer struct {
	opts   Options
	dialer websocket.Dialer
}

var _ ContextDialer = (*Dialer)(nil)

// NewDialer creates a Dialer.
func NewDialer(opts Options) *Dialer {
	return &Dialer{
		opts: opts,
		dialer: websocket.Dialer{
			Proxy:             http.ProxyFromEnvironment,
			HandshakeTimeout:  opts.HandshakeTimeout,
			EnableCompression: opts.Compression,
		},
	}
}

// Dial performs the opening handshake and starts the keepalive loop.
func (d *Dialer) Dial(ctx context.Context, url string) (*Conn, error) {
	ws, resp, err := d.dialer.DialContext(ctx, url, d.opts.Header)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	return newConn(ws, d.opts), nil
}

// Conn is a client WebSocket connection.
//
// gorilla/websocket permits one concurrent reader and one concurrent writer.
// Receive must only be called from a single goroutine; Send is serialized
// internally. Control frames (pings, close) are safe alongside both.
type Conn struct {
	ws   *websocket.Conn
	opts Options

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
	closed    chan struct{}
}

func newConn(ws *websocket.Conn, opts Options) *Conn {
	c := &Conn{
		ws:     ws,
		opts:   opts,
		closed: make(chan struct{}),
	}

	if opts.ReadLimit > 0 {
		ws.SetReadLimit(opts.ReadLimit)
	}
	if opts.PongWait > 0 {
		_ = ws.SetReadDeadline(time.Now().Add(opts.PongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(opts.PongWait))
		})
	}
	if opts.PingInterval > 0 {
		go c.pingLoop()
	}
	return c
}

// Receive blocks for the next data message.
func (c *Conn) Receive() (Message, error) {
	kind, data, err := c.ws.ReadMessage()
	if err != nil {
		if c.isClosed() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return Message{}, fmt.Errorf("%w: %w", ErrClosed, err)
		}
		return Message{}, fmt.Errorf("websocket read: %w", err)
	}

	if c.opts.PongWait > 0 {
		_ = c.ws.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	}
	return Message{Binary: kind == websocket.BinaryMessage, Data: data}, nil
}

// Send writes one text message.
func (c *Conn) Send(text string) error {
	if c.isClosed() {
		return ErrClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.opts.WriteTimeout > 0 {
		if err := c.ws.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout)); err != nil {
			return fmt.Errorf("websocket set write deadline: %w", err)
		}
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		if c.isClosed() {
			return fmt.Errorf("%w: %w", ErrClosed, err)
		}
		return fmt.Errorf("websocket write: %w", err)
	}
	return nil
}

// Close sends a normal close frame and closes the underlying connection.
// Safe for concurrent and repeated calls.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)

		if err := c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeGrace),
		); err != nil {
			logging.Debug().Err(err).Msg("WebSocket: failed to send close message")
		}
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}

// Done is closed when Close has been called.
func (c *Conn) Done() <-chan struct{} {
	return c.closed
}

func (c *Conn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// pingLoop sends keepalive pings until the connection is closed. A failed
// ping closes the socket, which in turn fails the pending Receive.
func (c *Conn) pingLoop() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.pingWriteTimeout())
			if err := c.ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				if c.isClosed() {
					return
				}
				logging.Warn().Err(err).Msg("WebSocket ping failed, closing connection")
				_ = c.ws.Close()
				return
			}
			logging.Trace().Msg("WebSocket ping sent")
		}
	}
}

func (c *Conn) pingWriteTimeout() time.Duration {
	if c.opts.WriteTimeout > 0 {
		return c.opts.WriteTimeout
	}
	return 10 * time.Second
}
