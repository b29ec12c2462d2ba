package ws

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"debate-relay/internal/relay"
)

// client pairs a websocket with a write lock: gorilla allows one concurrent
// writer per connection, and fanouts from different teams may race on it.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub is the in-process table of live websocket connections, keyed by the
// opaque connection id. It is the transport's per-connection management
// interface: the fanout router pushes through it and learns from its errors.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	info    map[string]ConnInfo
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
		info:    make(map[string]ConnInfo),
	}
}

// Add registers a live websocket under its connection id.
func (h *Hub) Add(connID string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[connID] = &client{conn: conn}
	h.info[connID] = info
}

// Remove drops a connection from the hub.
func (h *Hub) Remove(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, connID)
	delete(h.info, connID)
}

// Info returns the connection metadata recorded at upgrade time.
func (h *Hub) Info(connID string) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	info, ok := h.info[connID]
	return info, ok
}

// Send pushes a payload to one connection. An unknown id, or a write failure,
// is reported as relay.ErrConnectionGone; a failed socket is closed and
// dropped from the hub so later sends fail fast. Every write failure is
// collapsed into the gone class: once a gorilla writer errors the socket is
// unusable, so this transport never yields a transient delivery error.
func (h *Hub) Send(connID string, payload []byte) error {
	h.mu.RLock()
	cl, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s not in hub", relay.ErrConnectionGone, connID)
	}

	if err := cl.write(payload); err != nil {
		cl.conn.Close()
		h.Remove(connID)
		return fmt.Errorf("%w: %v", relay.ErrConnectionGone, err)
	}
	return nil
}

var _ relay.Sender = (*Hub)(nil)
