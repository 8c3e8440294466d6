package warfish

import "fmt"

// Envelope is the <rsp> wrapper shared by every Warfish REST response.
type Envelope struct {
	Stat string    `xml:"stat,attr"`
	Err  *rawError `xml:"err"`
}

type rawError struct {
	Code string `xml:"code,attr"`
	Msg  string `xml:"msg,attr"`
}

func (e *Envelope) envelope() *Envelope { return e }

// DetailsResponse is returned by warfish.tables.getDetails (sections map,continents).
type DetailsResponse struct {
	Envelope
	Continents  []RawContinent `xml:"continents>continent"`
	Territories []RawTerritory `xml:"map>territory"`
}

// StateResponse is returned by warfish.tables.getState (sections players,board).
type StateResponse struct {
	Envelope
	Players []RawPlayer `xml:"players>player"`
	Areas   []RawArea   `xml:"board>area"`
}

// RawContinent lists member territories as a comma-separated cids attribute.
type RawContinent struct {
	ID    string `xml:"id,attr"`
	Name  string `xml:"name,attr"`
	Units string `xml:"units,attr"`
	CIDs  string `xml:"cids,attr"`
}

// RawTerritory is a map entry carrying the display name.
type RawTerritory struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

// RawPlayer is a seat in the game.
type RawPlayer struct {
	ID     string `xml:"id,attr"`
	Name   string `xml:"name,attr"`
	Active string `xml:"active,attr"`
}

// RawArea is the live ownership of one territory.
type RawArea struct {
	ID       string `xml:"id,attr"`
	PlayerID string `xml:"playerid,attr"`
	Units    string `xml:"units,attr"`
}

// APIError is a stat="fail" response from Warfish, usually an unknown or
// private game.
type APIError struct {
	Method string
	Code   string
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("warfish %s failed: %s (code %s)", e.Method, e.Msg, e.Code)
}

// StatusError is a non-200 HTTP response from Warfish.
type StatusError struct {
	Method string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("warfish %s: status %d", e.Method, e.Code)
}

// Temporary reports whether the request is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == 429
}
