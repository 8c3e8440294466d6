package warfish

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/freeeve/hordestats/pkg/stats"
)

// Loader produces typed snapshots for a game.
type Loader struct {
	client *Client
}

// NewLoader creates a Loader backed by the given client.
func NewLoader(client *Client) *Loader {
	return &Loader{client: client}
}

// Load fetches the map and the live board concurrently and builds a snapshot.
func (l *Loader) Load(ctx context.Context, gameID string) (*stats.Snapshot, error) {
	if !IsGameID(gameID) {
		return nil, fmt.Errorf("%w: %q", ErrNoGameID, gameID)
	}

	ctx, span := tracer.Start(ctx, "warfish.Load")
	defer span.End()
	span.SetAttributes(attribute.String("warfish.gid", gameID))

	var (
		details *DetailsResponse
		state   *StateResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		details, err = l.client.GetDetails(gctx, gameID)
		return err
	})
	g.Go(func() error {
		var err error
		state, err = l.client.GetState(gctx, gameID)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	snap, err := BuildSnapshot(gameID, details, state)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("warfish.players", len(snap.Players)),
		attribute.Int("warfish.territories", len(snap.Territories)),
		attribute.Int("warfish.continents", len(snap.Continents)),
	)
	log.Debug().
		Str("gameId", gameID).
		Int("players", len(snap.Players)).
		Int("territories", len(snap.Territories)).
		Int("continents", len(snap.Continents)).
		Msg("Snapshot loaded")
	return snap, nil
}
