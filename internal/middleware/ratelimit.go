package middleware

import (
	"net"
	"net/http"

	"github.com/freeeve/hordestats/internal/logger"
	"github.com/freeeve/hordestats/internal/ratelimit"
)

// RateLimit rejects clients that exceed the limiter's budget by calling
// denied instead of next. Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, denied http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			ok, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				l := logger.ForRequest(r.Context())
				l.Warn().Err(err).Str("remote", ip).Msg("Rate limiter unavailable, allowing request")
				ok = true
			}
			if !ok {
				l := logger.ForRequest(r.Context())
				l.Info().Str("remote", ip).Str("path", r.URL.Path).Msg("Rate limit exceeded")
				w.Header().Set("Retry-After", "60")
				denied.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
