package handler

import (
	"context"
	"net/http"

	"github.com/a-h/templ"

	"github.com/freeeve/hordestats/internal/logger"
	"github.com/freeeve/hordestats/internal/model"
	"github.com/freeeve/hordestats/internal/view"
	"github.com/freeeve/hordestats/internal/warfish"
	"github.com/freeeve/hordestats/pkg/stats"
)

const recentLimit = 10

// StatsProvider computes reports and lists viewed games.
// Implemented by service.StatsService.
type StatsProvider interface {
	GameStats(ctx context.Context, gameID string) (*stats.Report, error)
	RecentLookups(ctx context.Context, limit int) ([]model.Lookup, error)
}

// StatsHandler serves the HTML pages and the JSON stats endpoint.
type StatsHandler struct {
	stats StatsProvider
	links warfish.Links
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(stats StatsProvider, links warfish.Links) *StatsHandler {
	return &StatsHandler{stats: stats, links: links}
}

// Index handles GET / and shows the lookup form.
func (h *StatsHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderIndex(w, r, http.StatusOK, view.IndexData{})
}

// Lookup handles POST / and redirects to the game's stats page.
func (h *StatsHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	input := r.PostFormValue("game")
	gameID, err := warfish.ParseGameID(input)
	if err != nil {
		h.renderIndex(w, r, http.StatusBadRequest, view.IndexData{Input: input, Error: "No game id found in " + quote(input)})
		return
	}
	http.Redirect(w, r, "/game/"+gameID, http.StatusSeeOther)
}

// GamePage handles GET /game/{id}.
func (h *StatsHandler) GamePage(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	l := logger.ForGame(r.Context(), gameID)

	report, err := h.stats.GameStats(r.Context(), gameID)
	if err != nil {
		status, msg := statusFor(err)
		l.Warn().Err(err).Int("status", status).Msg("Stats page failed")
		h.renderPage(w, r, status, "Game "+gameID, view.Error(msg))
		return
	}
	h.renderPage(w, r, http.StatusOK, "Game "+gameID, view.Stats(view.BuildStatsData(report, h.links)))
}

// GameStats handles GET /api/v1/games/{id}/stats.
func (h *StatsHandler) GameStats(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	l := logger.ForGame(r.Context(), gameID)

	report, err := h.stats.GameStats(r.Context(), gameID)
	if err != nil {
		status, msg := statusFor(err)
		l.Warn().Err(err).Int("status", status).Msg("Stats request failed")
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

const rateLimitedMsg = "too many requests, try again in a minute"

// RateLimitedPage answers a throttled page request.
func (h *StatsHandler) RateLimitedPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusTooManyRequests, "Slow down", view.Error(rateLimitedMsg))
}

// RateLimitedAPI answers a throttled API request.
func RateLimitedAPI(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusTooManyRequests, rateLimitedMsg)
}

// Health handles GET /healthz.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *StatsHandler) renderIndex(w http.ResponseWriter, r *http.Request, status int, data view.IndexData) {
	recent, err := h.stats.RecentLookups(r.Context(), recentLimit)
	if err != nil {
		l := logger.ForRequest(r.Context())
		l.Warn().Err(err).Msg("Failed to list recent lookups")
	}
	data.Recent = recent
	h.renderPage(w, r, status, "", view.Index(data))
}

func (h *StatsHandler) renderPage(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) {
	if err := view.WritePage(w, r, status, title, body); err != nil {
		l := logger.ForRequest(r.Context())
		l.Error().Err(err).Msg("Failed to render page")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func quote(s string) string {
	if s == "" {
		return "an empty input"
	}
	return `"` + s + `"`
}
