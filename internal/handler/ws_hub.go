package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSEvent is the envelope for all WebSocket messages.
type WSEvent struct {
	Type   string `json:"type"`
	GameID string `json:"game_id"`
	Data   any    `json:"data"`
}

// WSConn is one watcher of one game.
type WSConn struct {
	conn   *websocket.Conn
	gameID string
	remote string
	send   chan []byte
}

// Hub tracks which connections watch which game.
type Hub struct {
	mu          sync.RWMutex
	connections map[*WSConn]bool
	games       map[string]map[*WSConn]bool // gameID -> set of connections
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*WSConn]bool),
		games:       make(map[string]map[*WSConn]bool),
	}
}

// Register adds a connection and subscribes it to its game.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
	if h.games[c.gameID] == nil {
		h.games[c.gameID] = make(map[*WSConn]bool)
	}
	h.games[c.gameID][c] = true
}

// Unregister removes a connection and closes its send channel.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.connections[c] {
		return
	}
	delete(h.connections, c)
	if conns, ok := h.games[c.gameID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.games, c.gameID)
		}
	}
	close(c.send)
}

// BroadcastToGame sends an event to all connections watching a game.
func (h *Hub) BroadcastToGame(gameID string, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("gameId", gameID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.games[gameID] {
		select {
		case c.send <- data:
		default:
			log.Warn().Str("remote", c.remote).Str("gameId", gameID).Msg("Dropping WebSocket message, buffer full")
		}
	}
}

// SendTo queues an event for one connection. It reports false when the
// connection is gone or its buffer is full.
func (h *Hub) SendTo(c *WSConn, event WSEvent) bool {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("gameId", event.GameID).Msg("Failed to marshal WebSocket event")
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.connections[c] {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// BroadcastGameEvent implements service.Broadcaster.
func (h *Hub) BroadcastGameEvent(gameID string, eventType string, data any) {
	h.BroadcastToGame(gameID, WSEvent{
		Type:   eventType,
		GameID: gameID,
		Data:   data,
	})
}

// WatchedGames implements service.WatchList.
func (h *Hub) WatchedGames() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	games := make([]string, 0, len(h.games))
	for gameID := range h.games {
		games = append(games, gameID)
	}
	return games
}

// ConnectionCount returns the total number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// GameSubscriberCount returns the number of connections watching a game.
func (h *Hub) GameSubscriberCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}
