package notifications

import (
	"context"
	"errors"
	"sync"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/middleware"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerUser = 8
	maxTotalConns   = 10000
)

var (
	ErrUserConnLimit   = errors.New("user connection limit reached")
	ErrServerConnLimit = errors.New("server connection limit reached")
	ErrHubClosed       = errors.New("hub is shut down")
)

// Hub maps userID to that user's websocket clients.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	closed     bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[uint]map[*Client]struct{})}
}

// Register adds a connection for userID, enforcing per-user and global limits.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.totalConns >= maxTotalConns {
		return nil, ErrServerConnLimit
	}
	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, ErrUserConnLimit
	}

	client := newClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	middleware.ActiveWebSockets.Inc()
	return client, nil
}

// UnregisterClient removes client and closes its send channel. Safe to call twice.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	close(client.Send)
	h.totalConns--
	middleware.ActiveWebSockets.Dec()
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
}

// Deliver sends message to every connection of userID.
func (h *Hub) Deliver(userID uint, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for c := range h.conns[userID] {
		c.TrySend(data)
	}
}

// ConnectionCount returns the number of open connections for userID.
func (h *Hub) ConnectionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// StartWiring subscribes to the notifier's user channels and forwards each
// message to the matching user's connections.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, h.Deliver)
}

// Shutdown closes every client's send channel; each WritePump then sends a
// going-away close frame and closes its connection.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for _, userConns := range h.conns {
		for client := range userConns {
			close(client.Send)
			middleware.ActiveWebSockets.Dec()
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	return nil
}
