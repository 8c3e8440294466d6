package model

import "time"

// Lookup records that a game's statistics were viewed. It never stores the
// statistics themselves.
type Lookup struct {
	ID          string    `json:"id"`
	GameID      string    `json:"game_id"`
	Players     int       `json:"players"`
	Territories int       `json:"territories"`
	ViewedAt    time.Time `json:"viewed_at"`
}
