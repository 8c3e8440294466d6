package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/hordestats/internal/service"
	"github.com/freeeve/hordestats/internal/warfish"
	"github.com/freeeve/hordestats/pkg/stats"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps a failed stats request to an HTTP status and a message for
// the user.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, warfish.ErrNoGameID):
		return http.StatusBadRequest, service.UserMessage(err)
	case errors.Is(err, stats.ErrIntegrity):
		return http.StatusBadGateway, service.UserMessage(err)
	case warfish.IsNotFound(err):
		return http.StatusNotFound, service.UserMessage(err)
	default:
		return http.StatusBadGateway, service.UserMessage(err)
	}
}
