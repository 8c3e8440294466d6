package stats

import (
	"fmt"
	"math/rand"
	"testing"
)

// randomSnapshot builds a consistent snapshot with overlapping continents.
func randomSnapshot(rng *rand.Rand) *Snapshot {
	s := &Snapshot{TerritoryNames: make(map[string]string)}

	numPlayers := 1 + rng.Intn(6)
	for i := 0; i < numPlayers; i++ {
		s.Players = append(s.Players, Player{ID: fmt.Sprintf("p%d", i), Name: fmt.Sprintf("Player %d", i)})
	}

	numTerritories := 1 + rng.Intn(40)
	for i := 0; i < numTerritories; i++ {
		id := fmt.Sprintf("t%d", i)
		s.Territories = append(s.Territories, Territory{
			ID:      id,
			OwnerID: s.Players[rng.Intn(numPlayers)].ID,
			Units:   rng.Intn(20),
		})
		s.TerritoryNames[id] = "Territory " + id
	}

	numContinents := rng.Intn(8)
	for i := 0; i < numContinents; i++ {
		size := 1 + rng.Intn(numTerritories)
		c := Continent{ID: fmt.Sprintf("c%d", i)}
		for _, idx := range rng.Perm(numTerritories)[:size] {
			c.TerritoryIDs = append(c.TerritoryIDs, s.Territories[idx].ID)
		}
		s.Continents = append(s.Continents, c)
	}
	return s
}

// FuzzCompute checks the report invariants on random consistent snapshots.
func FuzzCompute(f *testing.F) {
	f.Add(int64(1))
	f.Add(int64(42))
	f.Add(int64(20260101))

	f.Fuzz(func(t *testing.T, seed int64) {
		s := randomSnapshot(rand.New(rand.NewSource(seed)))

		report, err := Compute(s)
		if err != nil {
			t.Fatalf("consistent snapshot rejected: %v", err)
		}

		// Conservation of units
		want := 0
		for _, terr := range s.Territories {
			want += terr.Units
		}
		if got := report.TotalUnits(); got != want {
			t.Errorf("total units %d, want %d", got, want)
		}

		// Every player exactly once, never below base reinforcement
		if len(report.Players) != len(s.Players) {
			t.Errorf("expected %d players, got %d", len(s.Players), len(report.Players))
		}
		bonusTotal := 0
		for _, p := range s.Players {
			ps, ok := report.Players[p.ID]
			if !ok {
				t.Fatalf("player %s missing from report", p.ID)
			}
			if ps.NextTurnUnits < BaseReinforcement {
				t.Errorf("player %s next turn units %d below base", p.ID, ps.NextTurnUnits)
			}
			if ps.NextTurnUnits-BaseReinforcement != len(ps.Continents) {
				t.Errorf("player %s: bonus %d does not match %d continents", p.ID, ps.NextTurnUnits-BaseReinforcement, len(ps.Continents))
			}
			bonusTotal += len(ps.Continents)
		}

		// Controlled continents contribute exactly one bonus per member territory
		owners := make(map[string]string, len(s.Territories))
		for _, terr := range s.Territories {
			owners[terr.ID] = terr.OwnerID
		}
		wantBonus := make(map[string]int)
		controlled := 0
		for _, c := range s.Continents {
			distinct := make(map[string]bool)
			for _, id := range c.TerritoryIDs {
				distinct[owners[id]] = true
			}
			if len(distinct) != 1 {
				continue
			}
			controlled++
			for _, id := range c.TerritoryIDs {
				wantBonus[id]++
			}
		}
		if controlled != bonusTotal {
			t.Errorf("expected %d controlled continents, players hold %d", controlled, bonusTotal)
		}
		for id, tb := range report.Territories {
			if tb.BonusUnits != wantBonus[id] {
				t.Errorf("territory %s bonus %d, want %d", id, tb.BonusUnits, wantBonus[id])
			}
		}
	})
}
