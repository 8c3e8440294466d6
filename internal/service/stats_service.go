package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/hordestats/internal/model"
	"github.com/freeeve/hordestats/internal/repository"
	"github.com/freeeve/hordestats/internal/warfish"
	"github.com/freeeve/hordestats/pkg/stats"
)

// SnapshotLoader produces a snapshot of a game's current state.
// Implemented by warfish.Loader.
type SnapshotLoader interface {
	Load(ctx context.Context, gameID string) (*stats.Snapshot, error)
}

// StatsService turns a game id into a reinforcement report.
type StatsService struct {
	loader  SnapshotLoader
	lookups repository.LookupRepository
	now     func() time.Time
}

// NewStatsService creates a StatsService. A nil lookups disables history.
func NewStatsService(loader SnapshotLoader, lookups repository.LookupRepository) *StatsService {
	if lookups == nil {
		lookups = repository.NoopLookups{}
	}
	return &StatsService{loader: loader, lookups: lookups, now: time.Now}
}

// Report loads a fresh snapshot and computes its statistics.
func (s *StatsService) Report(ctx context.Context, gameID string) (*stats.Report, error) {
	snap, err := s.loader.Load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return stats.Compute(snap)
}

// GameStats computes the report for a game a user asked for and records the
// lookup. History failures are logged, never returned.
func (s *StatsService) GameStats(ctx context.Context, gameID string) (*stats.Report, error) {
	report, err := s.Report(ctx, gameID)
	if err != nil {
		return nil, err
	}

	lookup := model.Lookup{
		ID:          uuid.NewString(),
		GameID:      gameID,
		Players:     len(report.Players),
		Territories: len(report.Territories),
		ViewedAt:    s.now().UTC(),
	}
	if err := s.lookups.Record(ctx, lookup); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("Failed to record lookup")
	}
	return report, nil
}

// RecentLookups returns the latest distinct games viewed, newest first.
func (s *StatsService) RecentLookups(ctx context.Context, limit int) ([]model.Lookup, error) {
	if limit <= 0 {
		return nil, nil
	}
	return s.lookups.Recent(ctx, limit)
}

// UserMessage describes a failed stats request in terms a player understands.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, warfish.ErrNoGameID):
		return "no game id found"
	case errors.Is(err, stats.ErrIntegrity):
		return "could not compute statistics for this game"
	case warfish.IsNotFound(err):
		return "game not found on Warfish"
	case errors.Is(err, context.DeadlineExceeded):
		return "Warfish did not answer in time"
	default:
		return "could not load the game from Warfish"
	}
}
