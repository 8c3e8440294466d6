package repository

import (
	"context"

	"github.com/freeeve/hordestats/internal/model"
)

// LookupRepository stores the history of viewed games.
type LookupRepository interface {
	Record(ctx context.Context, lookup model.Lookup) error
	// Recent returns the latest lookup of each distinct game, newest first.
	Recent(ctx context.Context, limit int) ([]model.Lookup, error)
	Close() error
}

// NoopLookups is used when no history store is configured.
type NoopLookups struct{}

func (NoopLookups) Record(context.Context, model.Lookup) error { return nil }

func (NoopLookups) Recent(context.Context, int) ([]model.Lookup, error) { return nil, nil }

func (NoopLookups) Close() error { return nil }
