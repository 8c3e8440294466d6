package service

import (
	"context"
	"errors"
	"sync"

	"github.com/freeeve/hordestats/internal/model"
	"github.com/freeeve/hordestats/pkg/stats"
)

type mockLoader struct {
	snaps map[string]*stats.Snapshot
	err   error
	calls int
}

func (m *mockLoader) Load(_ context.Context, gameID string) (*stats.Snapshot, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	snap, ok := m.snaps[gameID]
	if !ok {
		return nil, errors.New("unexpected game " + gameID)
	}
	return snap, nil
}

type mockLookups struct {
	recorded []model.Lookup
	err      error
}

func (m *mockLookups) Record(_ context.Context, l model.Lookup) error {
	if m.err != nil {
		return m.err
	}
	m.recorded = append(m.recorded, l)
	return nil
}

func (m *mockLookups) Recent(_ context.Context, limit int) ([]model.Lookup, error) {
	out := make([]model.Lookup, 0, limit)
	for i := len(m.recorded) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.recorded[i])
	}
	return out, nil
}

func (m *mockLookups) Close() error { return nil }

type sentEvent struct {
	gameID    string
	eventType string
	data      any
}

type mockBroadcaster struct {
	mu     sync.Mutex
	events []sentEvent
}

func (m *mockBroadcaster) BroadcastGameEvent(gameID, eventType string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, sentEvent{gameID, eventType, data})
}

type staticWatchList []string

func (s staticWatchList) WatchedGames() []string { return s }

// twoPlayerGame: Alice holds all of continent N, Bob holds T3.
func twoPlayerGame(gameID string) *stats.Snapshot {
	return &stats.Snapshot{
		GameID: gameID,
		Territories: []stats.Territory{
			{ID: "T1", OwnerID: "p1", Units: 3},
			{ID: "T2", OwnerID: "p1", Units: 2},
			{ID: "T3", OwnerID: "p2", Units: 4},
		},
		Continents: []stats.Continent{{ID: "N", Name: "North", TerritoryIDs: []string{"T1", "T2"}}},
		Players:    []stats.Player{{ID: "p1", Name: "Alice"}, {ID: "p2", Name: "Bob"}},
	}
}
