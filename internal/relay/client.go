package relay

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// client is one WebSocket connection. Registration fields are guarded by
// the server mutex.
type client struct {
	conn *websocket.Conn
	cfg  *Config
	log  *slog.Logger

	role Role
	room string

	// Send queue
	sendCh chan []byte

	// Lifecycle
	closeCh   chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, cfg *Config, log *slog.Logger) *client {
	return &client{
		conn:    conn,
		cfg:     cfg,
		log:     log,
		sendCh:  make(chan []byte, cfg.SendQueueSize),
		closeCh: make(chan struct{}),
	}
}

// send queues a frame for the write loop. A client whose queue is full is
// too slow to keep up and gets disconnected.
func (c *client) send(msg []byte) bool {
	select {
	case <-c.closeCh:
		return false
	default:
	}

	select {
	case c.sendCh <- msg:
		return true
	default:
		c.log.Warn("send queue full, dropping client")
		c.close()
		return false
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.closeCh)
		c.conn.Close()
	})
}

// readLoop delivers every text frame to handler until the connection fails.
func (c *client) readLoop(handler func(*client, []byte)) {
	defer c.close()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	})

	for {
		typ, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("read failed", "err", err)
			}
			return
		}
		if typ != websocket.TextMessage {
			continue
		}
		handler(c, data)
	}
}

// writeLoop drains the send queue and keeps the connection alive with pings.
func (c *client) writeLoop() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.closeCh:
			return
		case msg := <-c.sendCh:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
