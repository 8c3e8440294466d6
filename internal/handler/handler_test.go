package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/freeeve/hordestats/internal/model"
	"github.com/freeeve/hordestats/internal/service"
	"github.com/freeeve/hordestats/internal/warfish"
	"github.com/freeeve/hordestats/pkg/stats"
)

type fakeStats struct {
	reports map[string]*stats.Report
	err     error
	recent  []model.Lookup
	calls   []string
}

func (f *fakeStats) GameStats(_ context.Context, gameID string) (*stats.Report, error) {
	f.calls = append(f.calls, gameID)
	if f.err != nil {
		return nil, f.err
	}
	if !warfish.IsGameID(gameID) {
		return nil, warfish.ErrNoGameID
	}
	r, ok := f.reports[gameID]
	if !ok {
		return nil, &warfish.APIError{Code: "400", Msg: "unknown game"}
	}
	return r, nil
}

func (f *fakeStats) RecentLookups(context.Context, int) ([]model.Lookup, error) {
	return f.recent, nil
}

type denyAll struct{}

func (denyAll) Allow(context.Context, string) (bool, error) { return false, nil }

type fakeRefresher struct {
	calls atomic.Int32
}

func (f *fakeRefresher) Event(_ context.Context, gameID string) (string, any) {
	n := f.calls.Add(1)
	return service.EventStatsUpdated, map[string]any{"game": gameID, "push": n}
}

func sampleReport() *stats.Report {
	return &stats.Report{
		GameID: "42",
		Players: map[string]stats.PlayerStats{
			"0": {PlayerID: "0", Name: "Alice", TotalUnits: 5, NextTurnUnits: 6, Territories: 2, Continents: []string{"1"}},
			"1": {PlayerID: "1", Name: "Bob", TotalUnits: 0, NextTurnUnits: 5},
		},
		Territories: map[string]stats.TerritoryBonus{
			"1": {TerritoryID: "1", OwnerID: "0", Units: 3, BonusUnits: 1},
			"2": {TerritoryID: "2", OwnerID: "0", Units: 2, BonusUnits: 1},
		},
		TerritoryNames: map[string]string{"1": "Alaska", "2": "Alberta"},
	}
}

func newTestRoutes(fs *fakeStats) http.Handler {
	sh := NewStatsHandler(fs, warfish.Links{BaseURL: "http://warfish.net/war"})
	return Routes(sh, NewWatchHandler(NewHub(), &fakeRefresher{}), nil)
}

func TestIndexShowsRecentLookups(t *testing.T) {
	fs := &fakeStats{recent: []model.Lookup{{GameID: "31337", Players: 3, ViewedAt: time.Now()}}}
	rec := httptest.NewRecorder()
	newTestRoutes(fs).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `name="game"`) {
		t.Error("expected lookup form")
	}
	if !strings.Contains(body, `href="/game/31337"`) {
		t.Error("expected recent game link")
	}
}

func TestLookupRedirects(t *testing.T) {
	form := url.Values{"game": {"http://warfish.net/war/play/game?gid=98765"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	newTestRoutes(&fakeStats{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/game/98765" {
		t.Errorf("expected redirect to /game/98765, got %s", loc)
	}
}

func TestLookupWithoutDigits(t *testing.T) {
	form := url.Values{"game": {"no id here"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	newTestRoutes(&fakeStats{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No game id found") {
		t.Error("expected error message on the form")
	}
}

func TestGamePage(t *testing.T) {
	fs := &fakeStats{reports: map[string]*stats.Report{"42": sampleReport()}}
	rec := httptest.NewRecorder()
	newTestRoutes(fs).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/game/42", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Alice") {
		t.Error("expected Alice in players table")
	}
	if strings.Contains(body, "Bob") {
		t.Error("players without units should be hidden")
	}
	if !strings.Contains(body, "Alaska") || !strings.Contains(body, "Alberta") {
		t.Error("expected bonus territories")
	}
}

func TestGamePageErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  error
		want int
		msg  string
	}{
		{"not found", "/game/7", nil, http.StatusNotFound, "game not found on Warfish"},
		{"bad id", "/game/abc", nil, http.StatusBadRequest, "no game id found"},
		{"integrity", "/game/42", &stats.IntegrityError{Reason: stats.ReasonEmptyContinent, ContinentID: "1"}, http.StatusBadGateway, "could not compute statistics for this game"},
		{"upstream down", "/game/42", errors.New("connection refused"), http.StatusBadGateway, "could not load the game from Warfish"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeStats{reports: map[string]*stats.Report{"42": sampleReport()}, err: tt.err}
			rec := httptest.NewRecorder()
			newTestRoutes(fs).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.msg) {
				t.Errorf("expected %q in body", tt.msg)
			}
		})
	}
}

func TestGameStatsAPI(t *testing.T) {
	fs := &fakeStats{reports: map[string]*stats.Report{"42": sampleReport()}}
	rec := httptest.NewRecorder()
	newTestRoutes(fs).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/games/42/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON, got %s", ct)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header on API")
	}

	var report stats.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.GameID != "42" || len(report.Players) != 2 {
		t.Errorf("unexpected report %+v", report)
	}
	// The API returns the full report, zero-unit players included
	if report.Players["1"].NextTurnUnits != 5 {
		t.Errorf("expected Bob with 5 next turn units, got %+v", report.Players["1"])
	}
}

func TestGameStatsAPIError(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRoutes(&fakeStats{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/games/9/stats", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "game not found on Warfish" {
		t.Errorf("unexpected error body %v", body)
	}
}

func TestRateLimitedRoutes(t *testing.T) {
	fs := &fakeStats{reports: map[string]*stats.Report{"42": sampleReport()}}
	routes := Routes(NewStatsHandler(fs, warfish.Links{}), NewWatchHandler(NewHub(), &fakeRefresher{}), denyAll{})

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/games/42/stats", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("API: expected 429, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error"`) {
		t.Error("API: expected JSON error")
	}

	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/game/42", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("page: expected 429, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<html") {
		t.Error("page: expected HTML error")
	}

	// The index never reaches Warfish and stays available
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("index: expected 200, got %d", rec.Code)
	}
	if len(fs.calls) != 0 {
		t.Errorf("throttled requests must not compute stats, got %v", fs.calls)
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRoutes(&fakeStats{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestWatchPushesFirstReport(t *testing.T) {
	srv := httptest.NewServer(newTestRoutes(&fakeStats{}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/games/42/watch"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event WSEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read: %v", err)
	}
	if event.Type != service.EventStatsUpdated || event.GameID != "42" {
		t.Errorf("unexpected event %+v", event)
	}
}

func TestWatchFirstReportOnlyReachesNewWatcher(t *testing.T) {
	hub := NewHub()
	refresher := &fakeRefresher{}
	srv := httptest.NewServer(Routes(NewStatsHandler(&fakeStats{}, warfish.Links{}), NewWatchHandler(hub, refresher), nil))
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/games/42/watch"

	first, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial first: %v", err)
	}
	defer first.Close()
	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event WSEvent
	if err := first.ReadJSON(&event); err != nil {
		t.Fatalf("first read: %v", err)
	}

	second, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial second: %v", err)
	}
	defer second.Close()
	second.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := second.ReadJSON(&event); err != nil {
		t.Fatalf("second read: %v", err)
	}
	if event.Data.(map[string]any)["push"] != float64(2) {
		t.Errorf("expected the second computed report, got %v", event.Data)
	}

	first.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if err := first.ReadJSON(&event); err == nil {
		t.Errorf("existing watcher received another watcher's first report: %+v", event)
	}
	if got := refresher.calls.Load(); got != 2 {
		t.Errorf("expected one computation per connection, got %d", got)
	}
}

func TestWatchRejectsBadID(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRoutes(&fakeStats{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/games/abc/watch", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
