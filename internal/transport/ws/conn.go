package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrBufferFull is returned when the send buffer is full.
var ErrBufferFull = errors.New("send buffer full")

// Connection is one client socket. Writes go through Send so only the write
// pump touches the socket.
type Connection struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	turns  chan TurnFrame
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

func newConnection(id string, conn *websocket.Conn) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		ID:     id,
		Conn:   conn,
		Send:   make(chan []byte, 16),
		turns:  make(chan TurnFrame, 4),
		ctx:    ctx,
		cancel: cancel,
	}
}

// SendJSON queues v for the write pump.
func (c *Connection) SendJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	select {
	case c.Send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

// WriteMessage writes a message to the socket with a deadline.
func (c *Connection) WriteMessage(messageType int, data []byte, timeout time.Duration) error {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return c.Conn.WriteMessage(messageType, data)
}

// Close cancels in-flight turns and stops the write pump. It is safe to call
// more than once.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	close(c.Send)
	close(c.turns)
}
