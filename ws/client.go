package ws

import (
	"time"

	"microblog/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is one feed subscriber. UserID is empty for anonymous viewers.
type Client struct {
	ID     string
	UserID string

	conn    *websocket.Conn
	send    chan []byte
	manager *FeedManager
}

func newClient(id, userID string, conn *websocket.Conn, manager *FeedManager) *Client {
	return &Client{
		ID:      id,
		UserID:  userID,
		conn:    conn,
		send:    make(chan []byte, clientBuffer),
		manager: manager,
	}
}

// readPump only keeps the connection alive; the feed is one-way, so
// incoming frames are discarded.
func (c *Client) readPump() {
	defer func() {
		c.manager.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("feed read error", "client_id", c.ID, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Debug("feed write error", "client_id", c.ID, "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
