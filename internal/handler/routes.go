package handler

import (
	"net/http"

	"github.com/freeeve/hordestats/internal/middleware"
	"github.com/freeeve/hordestats/internal/ratelimit"
)

// Routes registers every endpoint on a new mux. Endpoints that reach Warfish
// are throttled by limiter; a nil limiter disables throttling.
func Routes(stats *StatsHandler, watch *WatchHandler, limiter ratelimit.Limiter) http.Handler {
	pageLimit, apiLimit := passThrough, passThrough
	if limiter != nil {
		pageLimit = middleware.RateLimit(limiter, http.HandlerFunc(stats.RateLimitedPage))
		apiLimit = middleware.RateLimit(limiter, http.HandlerFunc(RateLimitedAPI))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", Health)
	mux.HandleFunc("GET /{$}", stats.Index)
	mux.HandleFunc("POST /{$}", stats.Lookup)
	mux.Handle("GET /game/{id}", pageLimit(http.HandlerFunc(stats.GamePage)))

	api := http.NewServeMux()
	api.Handle("GET /games/{id}/stats", middleware.Chain(http.HandlerFunc(stats.GameStats), middleware.JSON, apiLimit))
	api.Handle("GET /games/{id}/watch", apiLimit(http.HandlerFunc(watch.ServeWatch)))
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", middleware.Chain(api, middleware.CORS("*"))))

	return middleware.Chain(mux, middleware.Logger)
}

func passThrough(next http.Handler) http.Handler { return next }
