package handler

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/global-command/api/internal/service"
)

var _ service.Broadcaster = (*Hub)(nil)

// WSEvent is the envelope for every server-to-client message.
type WSEvent struct {
	Type   string    `json:"type"`
	GameID string    `json:"game_id,omitempty"`
	Data   any       `json:"data,omitempty"`
	SentAt time.Time `json:"sent_at"`
}

// Client actions.
const (
	ClientSubscribe   = "subscribe"
	ClientUnsubscribe = "unsubscribe"
	ClientPing        = "ping"
)

// Server-only message types.
const (
	msgConnected    = "connected"
	msgSubscribed   = "subscribed"
	msgUnsubscribed = "unsubscribed"
	msgPong         = "pong"
)

// ClientMessage is the envelope for messages sent from the client.
type ClientMessage struct {
	Action string `json:"action"`
	GameID string `json:"game_id,omitempty"`
}

// WSConn is one client socket with its user and game subscriptions.
type WSConn struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
	games  map[string]bool // guarded by Hub.mu
}

func newWSConn(conn *websocket.Conn, userID string) *WSConn {
	return &WSConn{
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufSize),
		games:  make(map[string]bool),
	}
}

// Hub fans game events out to subscribed sockets.
type Hub struct {
	mu          sync.RWMutex
	connections map[*WSConn]bool
	games       map[string]map[*WSConn]bool
	closed      bool
	now         func() time.Time
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*WSConn]bool),
		games:       make(map[string]map[*WSConn]bool),
		now:         time.Now,
	}
}

// Register adds a connection to the hub. It reports false once the hub
// has been closed.
func (h *Hub) Register(c *WSConn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.connections[c] = true
	return true
}

// Unregister removes a connection and all its subscriptions, then closes
// its send channel. Calling it twice is a no-op.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.connections[c] {
		return
	}
	h.drop(c)
}

func (h *Hub) drop(c *WSConn) {
	delete(h.connections, c)
	for gameID := range c.games {
		h.removeSub(c, gameID)
	}
	close(c.send)
}

func (h *Hub) removeSub(c *WSConn, gameID string) {
	delete(c.games, gameID)
	if conns, ok := h.games[gameID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.games, gameID)
		}
	}
}

// Subscribe adds a connection to a game channel.
func (h *Hub) Subscribe(c *WSConn, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.connections[c] {
		return
	}
	if h.games[gameID] == nil {
		h.games[gameID] = make(map[*WSConn]bool)
	}
	h.games[gameID][c] = true
	c.games[gameID] = true
}

// Unsubscribe removes a connection from a game channel.
func (h *Hub) Unsubscribe(c *WSConn, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeSub(c, gameID)
}

// Close unregisters every connection. Writers see their send channel close
// and shut the socket down.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.connections {
		h.drop(c)
	}
	log.Info().Msg("WebSocket hub closed")
}

func (h *Hub) encode(event WSEvent) ([]byte, error) {
	if event.SentAt.IsZero() {
		event.SentAt = h.now().UTC()
	}
	return json.Marshal(event)
}

// BroadcastGameEvent sends a service event to every subscriber of gameID.
func (h *Hub) BroadcastGameEvent(gameID, eventType string, data any) {
	h.BroadcastToGame(gameID, WSEvent{Type: eventType, GameID: gameID, Data: data})
}

// BroadcastToGame sends an event to all connections subscribed to a game.
func (h *Hub) BroadcastToGame(gameID string, event WSEvent) {
	data, err := h.encode(event)
	if err != nil {
		log.Error().Err(err).Str("gameId", gameID).Str("type", event.Type).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.games[gameID] {
		select {
		case c.send <- data:
		default:
			log.Warn().Str("userId", c.userID).Str("gameId", gameID).Msg("Dropping WebSocket message, buffer full")
		}
	}
}

// BroadcastToUser sends an event to every connection of a user.
func (h *Hub) BroadcastToUser(userID string, event WSEvent) {
	data, err := h.encode(event)
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.connections {
		if c.userID == userID {
			select {
			case c.send <- data:
			default:
			}
		}
	}
}

// reply queues a message for one connection only.
func (h *Hub) reply(c *WSConn, event WSEvent) {
	data, err := h.encode(event)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.connections[c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// ConnectionCount returns the total number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// GameSubscriberCount returns the number of connections subscribed to a game.
func (h *Hub) GameSubscriberCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}
