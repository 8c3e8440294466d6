// Package stats derives per-player reinforcement statistics from a board snapshot.
package stats

// BaseReinforcement is the number of units every player receives at the start
// of their next turn, before continent bonuses.
const BaseReinforcement = 5

// ContinentBonus is added to a player's reinforcement for each continent they
// fully control.
const ContinentBonus = 1

// Territory is an ownable board area at snapshot time.
type Territory struct {
	ID      string
	OwnerID string
	Units   int
}

// Continent is a named grouping of territories. Membership may overlap with
// other continents.
type Continent struct {
	ID           string
	Name         string
	TerritoryIDs []string
}

// Player is a seat in the game.
type Player struct {
	ID   string
	Name string
}

// Snapshot is the state of one game at one point in time.
type Snapshot struct {
	GameID         string
	Territories    []Territory
	Continents     []Continent
	Players        []Player
	TerritoryNames map[string]string // territory ID -> display name
}

// PlayerStats is the derived summary for one player.
type PlayerStats struct {
	PlayerID      string   `json:"player_id"`
	Name          string   `json:"name"`
	TotalUnits    int      `json:"total_units"`
	NextTurnUnits int      `json:"next_turn_units"`
	Territories   int      `json:"territories"`
	Continents    []string `json:"continents,omitempty"` // controlled continent IDs, snapshot order
}

// TerritoryBonus records how many controlled continents a territory belongs to.
type TerritoryBonus struct {
	TerritoryID string `json:"territory_id"`
	OwnerID     string `json:"owner_id"`
	Units       int    `json:"units"`
	BonusUnits  int    `json:"bonus_units"`
}

// Report is the result of Compute. Maps are unordered; ordering is left to
// whoever renders them.
type Report struct {
	GameID         string                    `json:"game_id"`
	Players        map[string]PlayerStats    `json:"players"`
	Territories    map[string]TerritoryBonus `json:"territories"`
	TerritoryNames map[string]string         `json:"territory_names"`
}

// TerritoryName returns the display name for a territory, falling back to its ID.
func (r *Report) TerritoryName(id string) string {
	if name, ok := r.TerritoryNames[id]; ok && name != "" {
		return name
	}
	return id
}

// TotalUnits returns the sum of units across all players.
func (r *Report) TotalUnits() int {
	total := 0
	for _, ps := range r.Players {
		total += ps.TotalUnits
	}
	return total
}
