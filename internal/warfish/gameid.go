package warfish

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrNoGameID means the input contained no game id.
var ErrNoGameID = errors.New("no game id found")

var digits = regexp.MustCompile(`\d+`)

// ParseGameID extracts a game id from a pasted Warfish URL or a bare id.
// A gid query parameter wins; otherwise the first run of digits is used.
func ParseGameID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if u, err := url.Parse(input); err == nil {
		if gid := u.Query().Get("gid"); IsGameID(gid) {
			return gid, nil
		}
	}
	if id := digits.FindString(input); id != "" {
		return id, nil
	}
	return "", ErrNoGameID
}

// IsGameID reports whether s is a well-formed game id.
func IsGameID(s string) bool {
	return s != "" && digits.FindString(s) == s
}

// Links builds player-facing Warfish URLs.
type Links struct {
	BaseURL string
}

// Game returns the URL of the game's play page.
func (l Links) Game(gameID string) string {
	return strings.TrimRight(l.BaseURL, "/") + "/play/game?gid=" + url.QueryEscape(gameID)
}

// Territory returns the URL of a territory's detail page within a game.
func (l Links) Territory(gameID, territoryID string) string {
	q := url.Values{}
	q.Set("gid", gameID)
	q.Set("t", "m")
	q.Set("cid", territoryID)
	return strings.TrimRight(l.BaseURL, "/") + "/play/gamedetails?" + q.Encode()
}
