package websocket

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/soa-sim/mctrial/pkg/streaming"
)

const (
	sendChSize   = 1_000
	ackChSize    = 16
	maxReconnect = 10
	maxBackoff   = 30 * time.Second
	writeWait    = 10 * time.Second
)

// connection manages a WebSocket connection with a single write goroutine.
type connection struct {
	mu     sync.Mutex
	conn   *ws.Conn
	sendCh chan []byte
	ackCh  chan streaming.AckMessage
	done   chan struct{} // closed on shutdown
	closed bool
	wg     sync.WaitGroup

	wsURL       string
	secret      string
	dialTimeout time.Duration

	// Cached batch_start message for reconnect replay.
	cachedStartMsg []byte

	logger zerolog.Logger
}

func newConnection(logger zerolog.Logger) *connection {
	return &connection{
		sendCh: make(chan []byte, sendChSize),
		ackCh:  make(chan streaming.AckMessage, ackChSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// dial connects to the WebSocket server and starts read/write loops.
func (c *connection) dial(rawURL, secret string, timeout time.Duration) error {
	c.wsURL = rawURL
	c.secret = secret
	c.dialTimeout = timeout

	conn, err := c.dialOnce()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.startLoops()
	return nil
}

func (c *connection) startLoops() {
	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		c.writeLoop()
	}()
	go func() {
		defer c.wg.Done()
		c.readLoop()
	}()
}

// dialOnce performs a single WebSocket dial with the secret query param.
func (c *connection) dialOnce() (*ws.Conn, error) {
	u, err := url.Parse(c.wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket URL: %w", err)
	}
	if c.secret != "" {
		q := u.Query()
		q.Set("secret", c.secret)
		u.RawQuery = q.Encode()
	}

	dialer := *ws.DefaultDialer
	if c.dialTimeout > 0 {
		dialer.HandshakeTimeout = c.dialTimeout
	}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}

// writeLoop drains sendCh and writes messages to the WebSocket.
// Only one writeLoop runs at a time; it returns on error or shutdown.
func (c *connection) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.sendCh:
			c.mu.Lock()
			conn := c.conn
			c.mu.Unlock()

			if conn == nil {
				continue
			}

			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Warn().Err(err).Msg("WebSocket SetWriteDeadline error")
				c.goReconnect()
				return
			}
			if err := conn.WriteMessage(ws.TextMessage, data); err != nil {
				c.logger.Warn().Err(err).Msg("WebSocket write error")
				c.goReconnect()
				return
			}
		}
	}
}

// readLoop reads ack messages from the server and routes them to ackCh.
func (c *connection) readLoop() {
	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()

		if conn == nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}
			c.logger.Warn().Err(err).Msg("WebSocket read error")
			c.goReconnect()
			return
		}

		var ack streaming.AckMessage
		if err := json.Unmarshal(message, &ack); err != nil {
			c.logger.Debug().Str("raw", string(message)).Msg("Non-ack message received")
			continue
		}

		if ack.Type == streaming.TypeAck {
			select {
			case c.ackCh <- ack:
			default:
				c.logger.Debug().Str("for", ack.For).Msg("Ack channel full, dropping")
			}
		}
	}
}

func (c *connection) goReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.reconnect()
	}()
}

// reconnect attempts to re-establish the WebSocket connection with
// exponential backoff. On success it replays the cached batch_start
// message and restarts the read/write loops.
func (c *connection) reconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	backoff := time.Second
	for attempt := 1; attempt <= maxReconnect; attempt++ {
		c.logger.Info().Int("attempt", attempt).Dur("backoff", backoff).Msg("Reconnecting to WebSocket")
		select {
		case <-c.done:
			return
		case <-time.After(backoff):
		}

		conn, err := c.dialOnce()
		if err != nil {
			c.logger.Warn().Err(err).Int("attempt", attempt).Msg("Reconnect dial failed")
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			_ = conn.Close()
			return
		}
		c.conn = conn
		cached := c.cachedStartMsg
		c.mu.Unlock()

		// Replay batch_start so the server knows which run we're writing.
		if cached != nil {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to set deadline for batch_start replay")
				_ = conn.Close()
				continue
			}
			if err := conn.WriteMessage(ws.TextMessage, cached); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to replay batch_start after reconnect")
				_ = conn.Close()
				continue
			}
		}

		c.logger.Info().Int("attempt", attempt).Msg("WebSocket reconnected")
		c.startLoops()
		return
	}

	c.logger.Error().Int("maxAttempts", maxReconnect).Msg("WebSocket reconnect failed after max attempts")
}

// send pushes data to the write loop. Non-blocking; drops if channel full.
func (c *connection) send(data []byte) bool {
	select {
	case c.sendCh <- data:
		return true
	default:
		c.logger.Warn().Msg("WebSocket send channel full, dropping message")
		return false
	}
}

// sendAndWait sends data and blocks until the server acknowledges with a
// matching ack message or the timeout expires.
func (c *connection) sendAndWait(data []byte, ackFor string, timeout time.Duration) error {
	if !c.send(data) {
		return fmt.Errorf("send queue full for %q", ackFor)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case ack := <-c.ackCh:
			if ack.For == ackFor {
				return nil
			}
			// Not our ack, keep waiting.
		case <-timer.C:
			return fmt.Errorf("timeout waiting for ack of %q", ackFor)
		case <-c.done:
			return fmt.Errorf("connection closed while waiting for ack of %q", ackFor)
		}
	}
}

// close sends a WebSocket close frame and shuts down all goroutines.
func (c *connection) close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	var err error
	if conn != nil {
		_ = conn.WriteMessage(
			ws.CloseMessage,
			ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
		)
		err = conn.Close()
	}
	c.wg.Wait()
	return err
}
