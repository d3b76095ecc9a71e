// Package handlers client.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/enzosantiagosrv1245-cell/aula/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	sendBufferSize = 64
)

// Client is one websocket connection with a buffered outbound queue. All
// writes go through the queue and a single writer goroutine, so delivery to
// one client never blocks anything else.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan models.Message
	log  *slog.Logger

	// mu serializes enqueue against close so the send channel is never
	// written after it is closed.
	mu     sync.Mutex
	closed bool
}

func newClient(id string, conn *websocket.Conn, log *slog.Logger) *Client {
	return &Client{
		ID:   id,
		conn: conn,
		send: make(chan models.Message, sendBufferSize),
		log:  log,
	}
}

// enqueue hands a message to the writer goroutine without blocking. When the
// buffer is full the message is dropped; the next tick snapshot supersedes
// anything a lagging client missed. After close it is a no-op.
func (c *Client) enqueue(msg models.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		c.log.Warn("send buffer full, dropping message", "client", c.ID, "type", msg.Type)
	}
}

// writePump drains the send queue onto the wire and keeps the connection
// alive with pings. It owns the connection's write side and closes the
// socket on exit.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				// Queue closed: say goodbye properly.
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				c.log.Error("marshal outbound message", "client", c.ID, "type", msg.Type, "err", err)
				continue
			}

			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Debug("write failed", "client", c.ID, "err", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close shuts the outbound queue exactly once; writePump finishes the rest.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
