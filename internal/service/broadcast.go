package service

// Event types pushed to watchers of a game.
const (
	EventStatsUpdated = "stats_updated"
	EventStatsError   = "stats_error"
)

// Broadcaster sends real-time events to connected clients.
// Implemented by the WebSocket hub.
type Broadcaster interface {
	BroadcastGameEvent(gameID string, eventType string, data any)
}

// WatchList reports which games currently have live watchers.
type WatchList interface {
	WatchedGames() []string
}

// NoopBroadcaster is a no-op implementation for testing or when WS is disabled.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastGameEvent(string, string, any) {}

// ErrorEvent is the payload of EventStatsError.
type ErrorEvent struct {
	Error string `json:"error"`
}
