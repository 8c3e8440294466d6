package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/hordestats/internal/warfish"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 54 * time.Second // Must be less than pongWait
	maxMsgSize   = 512
	sendBufSize  = 16
	firstPushTTL = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the stream is read-only public data
	},
}

// GameRefresher recomputes a game and returns the event to push.
// Implemented by service.Refresher.
type GameRefresher interface {
	Event(ctx context.Context, gameID string) (eventType string, data any)
}

// WatchHandler streams fresh statistics for one game over a WebSocket.
type WatchHandler struct {
	hub       *Hub
	refresher GameRefresher
}

// NewWatchHandler creates a WatchHandler.
func NewWatchHandler(hub *Hub, refresher GameRefresher) *WatchHandler {
	return &WatchHandler{hub: hub, refresher: refresher}
}

// ServeWatch handles GET /api/v1/games/{id}/watch.
func (h *WatchHandler) ServeWatch(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if !warfish.IsGameID(gameID) {
		writeError(w, http.StatusBadRequest, "no game id found")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &WSConn{
		conn:   conn,
		gameID: gameID,
		remote: r.RemoteAddr,
		send:   make(chan []byte, sendBufSize),
	}
	h.hub.Register(client)

	go h.writePump(client)
	go h.readPump(client)

	// The new watcher gets its first report now instead of on the next tick.
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), firstPushTTL)
		defer cancel()
		eventType, data := h.refresher.Event(ctx, gameID)
		h.hub.SendTo(client, WSEvent{Type: eventType, GameID: gameID, Data: data})
	}()

	log.Info().Str("gameId", gameID).Int("watchers", h.hub.GameSubscriberCount(gameID)).Msg("Watcher connected")
}

// readPump discards client messages and detects disconnects.
func (h *WatchHandler) readPump(c *WSConn) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
		log.Info().Str("gameId", c.gameID).Msg("Watcher disconnected")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("gameId", c.gameID).Msg("WebSocket unexpected close")
			}
			return
		}
	}
}

// writePump writes one event per frame and keeps the connection alive.
func (h *WatchHandler) writePump(c *WSConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
