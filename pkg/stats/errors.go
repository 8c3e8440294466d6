package stats

import (
	"errors"
	"fmt"
)

// ErrIntegrity matches every *IntegrityError via errors.Is.
var ErrIntegrity = errors.New("inconsistent snapshot")

// IntegrityReason identifies which snapshot invariant was violated.
type IntegrityReason string

const (
	ReasonUnknownOwner       IntegrityReason = "unknown_owner"
	ReasonUnknownTerritory   IntegrityReason = "unknown_territory"
	ReasonEmptyContinent     IntegrityReason = "empty_continent"
	ReasonDuplicateTerritory IntegrityReason = "duplicate_territory"
	ReasonDuplicatePlayer    IntegrityReason = "duplicate_player"
	ReasonNegativeUnits      IntegrityReason = "negative_units"
)

// IntegrityError reports an internally inconsistent snapshot. It is the only
// error Compute returns.
type IntegrityError struct {
	Reason      IntegrityReason
	TerritoryID string
	PlayerID    string
	ContinentID string
}

func (e *IntegrityError) Error() string {
	switch e.Reason {
	case ReasonUnknownOwner:
		return fmt.Sprintf("territory %q owned by unknown player %q", e.TerritoryID, e.PlayerID)
	case ReasonUnknownTerritory:
		return fmt.Sprintf("continent %q references unknown territory %q", e.ContinentID, e.TerritoryID)
	case ReasonEmptyContinent:
		return fmt.Sprintf("continent %q has no territories", e.ContinentID)
	case ReasonDuplicateTerritory:
		return fmt.Sprintf("territory %q listed more than once", e.TerritoryID)
	case ReasonDuplicatePlayer:
		return fmt.Sprintf("player %q listed more than once", e.PlayerID)
	case ReasonNegativeUnits:
		return fmt.Sprintf("territory %q has a negative unit count", e.TerritoryID)
	}
	return "inconsistent snapshot: " + string(e.Reason)
}

func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}
