package warfish

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/freeeve/hordestats/pkg/stats"
)

// ErrMalformedResponse means Warfish answered with data that cannot form a snapshot.
var ErrMalformedResponse = errors.New("malformed warfish response")

// NeutralPlayerID is the owner Warfish reports for unclaimed territories.
const NeutralPlayerID = "-1"

// NeutralPlayerName is shown for NeutralPlayerID.
const NeutralPlayerName = "Neutral"

// BuildSnapshot converts raw getDetails and getState responses into a typed
// snapshot. Structural problems (missing ids, unparseable counts) are
// rejected here; referential consistency is left to stats.Compute.
func BuildSnapshot(gameID string, details *DetailsResponse, state *StateResponse) (*stats.Snapshot, error) {
	s := &stats.Snapshot{
		GameID:         gameID,
		TerritoryNames: make(map[string]string, len(details.Territories)),
	}

	for _, t := range details.Territories {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: map territory without id", ErrMalformedResponse)
		}
		s.TerritoryNames[id] = t.Name
	}

	for _, c := range details.Continents {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: continent without id", ErrMalformedResponse)
		}
		cids := splitIDs(c.CIDs)
		if len(cids) == 0 {
			return nil, fmt.Errorf("%w: continent %q lists no territories", ErrMalformedResponse, id)
		}
		s.Continents = append(s.Continents, stats.Continent{ID: id, Name: c.Name, TerritoryIDs: cids})
	}

	hasNeutral := false
	for _, p := range state.Players {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: player without id", ErrMalformedResponse)
		}
		if id == NeutralPlayerID {
			hasNeutral = true
		}
		s.Players = append(s.Players, stats.Player{ID: id, Name: p.Name})
	}

	for _, a := range state.Areas {
		id := strings.TrimSpace(a.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: board area without id", ErrMalformedResponse)
		}
		units, err := strconv.Atoi(strings.TrimSpace(a.Units))
		if err != nil {
			return nil, fmt.Errorf("%w: area %q units %q", ErrMalformedResponse, id, a.Units)
		}
		owner := strings.TrimSpace(a.PlayerID)
		if owner == NeutralPlayerID && !hasNeutral {
			s.Players = append(s.Players, stats.Player{ID: NeutralPlayerID, Name: NeutralPlayerName})
			hasNeutral = true
		}
		s.Territories = append(s.Territories, stats.Territory{ID: id, OwnerID: owner, Units: units})
	}

	return s, nil
}

func splitIDs(cids string) []string {
	var ids []string
	for _, part := range strings.Split(cids, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
