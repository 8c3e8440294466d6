// Package view renders the HTML pages. Components are plain templ.Component
// values so handlers can compose them with templ.WithChildren.
package view

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/freeeve/hordestats/internal/warfish"
	"github.com/freeeve/hordestats/pkg/stats"
)

// BonusRow is one territory that contributes to its owner's reinforcements.
type BonusRow struct {
	TerritoryID string
	Name        string
	URL         string
	Units       int
	BonusUnits  int
}

// PlayerRow is one line of the players table plus its detail panel.
type PlayerRow struct {
	PlayerID      string
	Name          string
	TotalUnits    int
	NextTurnUnits int
	Territories   int
	Continents    int
	Bonuses       []BonusRow
}

// StatsData is everything the stats page shows.
type StatsData struct {
	GameID     string
	GameURL    string
	WatchURL   string
	TotalUnits int
	Players    []PlayerRow
	// Baseline is the rendered report's players as JSON. Live updates are
	// compared against it to tell whether the page is stale.
	Baseline string
}

// BuildStatsData turns a report into display rows. Players without units and
// territories without a bonus are hidden; the report itself keeps them.
func BuildStatsData(report *stats.Report, links warfish.Links) StatsData {
	data := StatsData{
		GameID:     report.GameID,
		GameURL:    links.Game(report.GameID),
		WatchURL:   "/api/v1/games/" + report.GameID + "/watch",
		TotalUnits: report.TotalUnits(),
	}
	if b, err := json.Marshal(report.Players); err == nil {
		data.Baseline = string(b)
	}

	bonuses := make(map[string][]BonusRow)
	for _, tb := range report.Territories {
		if tb.BonusUnits <= 0 {
			continue
		}
		bonuses[tb.OwnerID] = append(bonuses[tb.OwnerID], BonusRow{
			TerritoryID: tb.TerritoryID,
			Name:        report.TerritoryName(tb.TerritoryID),
			URL:         links.Territory(report.GameID, tb.TerritoryID),
			Units:       tb.Units,
			BonusUnits:  tb.BonusUnits,
		})
	}

	for _, ps := range report.Players {
		if ps.TotalUnits <= 0 {
			continue
		}
		rows := bonuses[ps.PlayerID]
		slices.SortFunc(rows, func(a, b BonusRow) int {
			return cmp.Or(
				cmp.Compare(b.BonusUnits, a.BonusUnits),
				cmp.Compare(a.Name, b.Name),
				cmp.Compare(a.TerritoryID, b.TerritoryID),
			)
		})
		data.Players = append(data.Players, PlayerRow{
			PlayerID:      ps.PlayerID,
			Name:          ps.Name,
			TotalUnits:    ps.TotalUnits,
			NextTurnUnits: ps.NextTurnUnits,
			Territories:   ps.Territories,
			Continents:    len(ps.Continents),
			Bonuses:       rows,
		})
	}
	slices.SortFunc(data.Players, func(a, b PlayerRow) int {
		return cmp.Or(
			cmp.Compare(b.TotalUnits, a.TotalUnits),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.PlayerID, b.PlayerID),
		)
	})
	return data
}
