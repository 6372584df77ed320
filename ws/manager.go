// Package ws streams domain events to websocket subscribers of the live feed.
package ws

import (
	"context"
	"encoding/json"
	"sync"

	"microblog/internal/events"
	"microblog/internal/logger"
)

const (
	broadcastBuffer = 256
	clientBuffer    = 64
)

// FeedManager fans events out to every connected client. Run owns the client
// set; other goroutines talk to it through channels.
type FeedManager struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
}

func NewFeedManager() *FeedManager {
	return &FeedManager{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (m *FeedManager) Run(ctx context.Context) {
	defer m.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-m.register:
			m.mu.Lock()
			m.clients[client] = struct{}{}
			total := len(m.clients)
			m.mu.Unlock()
			logger.Debug("feed client registered", "client_id", client.ID, "user_id", client.UserID, "total", total)

		case client := <-m.unregister:
			m.remove(client, "disconnected")

		case message := <-m.broadcast:
			m.fanOut(message)
		}
	}
}

// Publish implements events.Publisher. It never blocks: when the hub is
// saturated the event is dropped.
func (m *FeedManager) Publish(e events.Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		logger.WithError(err).Error("failed to encode feed event", "type", e.Type)
		return
	}

	select {
	case m.broadcast <- payload:
	case <-m.done:
	default:
		logger.Warn("feed event dropped", "type", e.Type, "post_id", e.PostID)
	}
}

func (m *FeedManager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

func (m *FeedManager) fanOut(message []byte) {
	m.mu.RLock()
	var slow []*Client
	for client := range m.clients {
		select {
		case client.send <- message:
		default:
			slow = append(slow, client)
		}
	}
	m.mu.RUnlock()

	for _, client := range slow {
		m.remove(client, "send buffer full")
	}
}

// remove closes the client's send channel; its write pump then closes the
// connection.
func (m *FeedManager) remove(client *Client, reason string) {
	m.mu.Lock()
	_, ok := m.clients[client]
	if ok {
		delete(m.clients, client)
		close(client.send)
	}
	total := len(m.clients)
	m.mu.Unlock()

	if ok {
		logger.Debug("feed client unregistered", "client_id", client.ID, "reason", reason, "total", total)
	}
}

func (m *FeedManager) shutdown() {
	m.stopOnce.Do(func() { close(m.done) })

	m.mu.Lock()
	for client := range m.clients {
		delete(m.clients, client)
		close(client.send)
	}
	m.mu.Unlock()
}

// join and leave give up once the manager has stopped.

func (m *FeedManager) join(c *Client) bool {
	select {
	case m.register <- c:
		return true
	case <-m.done:
		return false
	}
}

func (m *FeedManager) leave(c *Client) {
	select {
	case m.unregister <- c:
	case <-m.done:
	}
}
