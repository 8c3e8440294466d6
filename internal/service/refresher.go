package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Refresher periodically recomputes the statistics of every watched game and
// pushes the result to its watchers.
type Refresher struct {
	stats    *StatsService
	watched  WatchList
	bc       Broadcaster
	interval time.Duration
}

// NewRefresher creates a Refresher.
func NewRefresher(stats *StatsService, watched WatchList, bc Broadcaster, interval time.Duration) *Refresher {
	return &Refresher{stats: stats, watched: watched, bc: bc, interval: interval}
}

// Run refreshes watched games every interval until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", r.interval).Msg("Stats refresher started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Stats refresher stopped")
			return
		case <-ticker.C:
			r.RefreshAll(ctx)
		}
	}
}

// RefreshAll refreshes each watched game in turn.
func (r *Refresher) RefreshAll(ctx context.Context) {
	games := r.watched.WatchedGames()
	if len(games) > 0 {
		log.Debug().Int("count", len(games)).Msg("Refreshing watched games")
	}
	for _, gameID := range games {
		if ctx.Err() != nil {
			return
		}
		r.Refresh(ctx, gameID)
	}
}

// Event recomputes one game and returns the event its watchers should get.
func (r *Refresher) Event(ctx context.Context, gameID string) (string, any) {
	report, err := r.stats.Report(ctx, gameID)
	if err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("Refresh failed")
		return EventStatsError, ErrorEvent{Error: UserMessage(err)}
	}
	return EventStatsUpdated, report
}

// Refresh recomputes one game and broadcasts the report or the failure.
func (r *Refresher) Refresh(ctx context.Context, gameID string) {
	eventType, data := r.Event(ctx, gameID)
	if ctx.Err() != nil {
		return
	}
	r.bc.BroadcastGameEvent(gameID, eventType, data)
}
