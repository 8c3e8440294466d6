package stats

// Compute derives the statistics report for a snapshot. It performs no I/O
// and returns identical reports for identical snapshots. An inconsistent
// snapshot yields an *IntegrityError and no report.
func Compute(s *Snapshot) (*Report, error) {
	territories, err := indexTerritories(s)
	if err != nil {
		return nil, err
	}
	players, err := indexPlayers(s)
	if err != nil {
		return nil, err
	}

	report := &Report{
		GameID:         s.GameID,
		Players:        make(map[string]PlayerStats, len(s.Players)),
		Territories:    make(map[string]TerritoryBonus, len(s.Territories)),
		TerritoryNames: make(map[string]string, len(s.TerritoryNames)),
	}

	for _, p := range s.Players {
		report.Players[p.ID] = PlayerStats{
			PlayerID:      p.ID,
			Name:          p.Name,
			NextTurnUnits: BaseReinforcement,
		}
	}

	for _, t := range s.Territories {
		if _, ok := players[t.OwnerID]; !ok {
			return nil, &IntegrityError{Reason: ReasonUnknownOwner, TerritoryID: t.ID, PlayerID: t.OwnerID}
		}
		ps := report.Players[t.OwnerID]
		ps.TotalUnits += t.Units
		ps.Territories++
		report.Players[t.OwnerID] = ps

		report.Territories[t.ID] = TerritoryBonus{
			TerritoryID: t.ID,
			OwnerID:     t.OwnerID,
			Units:       t.Units,
		}
	}

	for _, c := range s.Continents {
		members, err := continentMembers(c, territories)
		if err != nil {
			return nil, err
		}

		owner, controlled := soleOwner(members, territories)
		if !controlled {
			continue
		}

		ps := report.Players[owner]
		ps.NextTurnUnits += ContinentBonus
		ps.Continents = append(ps.Continents, c.ID)
		report.Players[owner] = ps

		for _, id := range members {
			tb := report.Territories[id]
			tb.BonusUnits++
			report.Territories[id] = tb
		}
	}

	for id, name := range s.TerritoryNames {
		report.TerritoryNames[id] = name
	}

	return report, nil
}

func indexTerritories(s *Snapshot) (map[string]Territory, error) {
	byID := make(map[string]Territory, len(s.Territories))
	for _, t := range s.Territories {
		if _, dup := byID[t.ID]; dup {
			return nil, &IntegrityError{Reason: ReasonDuplicateTerritory, TerritoryID: t.ID}
		}
		if t.Units < 0 {
			return nil, &IntegrityError{Reason: ReasonNegativeUnits, TerritoryID: t.ID}
		}
		byID[t.ID] = t
	}
	return byID, nil
}

func indexPlayers(s *Snapshot) (map[string]struct{}, error) {
	byID := make(map[string]struct{}, len(s.Players))
	for _, p := range s.Players {
		if _, dup := byID[p.ID]; dup {
			return nil, &IntegrityError{Reason: ReasonDuplicatePlayer, PlayerID: p.ID}
		}
		byID[p.ID] = struct{}{}
	}
	return byID, nil
}

// continentMembers returns the continent's distinct territory IDs in listed order.
func continentMembers(c Continent, territories map[string]Territory) ([]string, error) {
	if len(c.TerritoryIDs) == 0 {
		return nil, &IntegrityError{Reason: ReasonEmptyContinent, ContinentID: c.ID}
	}
	seen := make(map[string]bool, len(c.TerritoryIDs))
	members := make([]string, 0, len(c.TerritoryIDs))
	for _, id := range c.TerritoryIDs {
		if _, ok := territories[id]; !ok {
			return nil, &IntegrityError{Reason: ReasonUnknownTerritory, ContinentID: c.ID, TerritoryID: id}
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, id)
	}
	return members, nil
}

// soleOwner reports the owner of every member territory, if there is exactly one.
func soleOwner(members []string, territories map[string]Territory) (string, bool) {
	owner := territories[members[0]].OwnerID
	for _, id := range members[1:] {
		if territories[id].OwnerID != owner {
			return "", false
		}
	}
	return owner, true
}
