// Package signal adapts websocket transports onto relay sessions.
package signal

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/melodiia/voicerelay/internal/relay"
)

var ErrBackpressure = errors.New("backpressure")

// wsConn is one websocket connection with a buffered outbound queue drained
// by the write pump. TrySend never blocks: a full queue means the consumer
// is too slow and the frame is dropped for this recipient only.
type wsConn struct {
	conn *websocket.Conn
	send chan relay.Frame

	mu     sync.RWMutex
	closed bool
}

func newWSConn(ws *websocket.Conn, buffer int) *wsConn {
	return &wsConn{
		conn: ws,
		send: make(chan relay.Frame, buffer),
	}
}

func (c *wsConn) TrySend(f relay.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}
