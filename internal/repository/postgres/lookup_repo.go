package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freeeve/hordestats/internal/model"
)

// LookupRepo handles lookup history operations.
type LookupRepo struct {
	db *sql.DB
}

// NewLookupRepo creates a LookupRepo.
func NewLookupRepo(db *sql.DB) *LookupRepo {
	return &LookupRepo{db: db}
}

// Record inserts a lookup.
func (r *LookupRepo) Record(ctx context.Context, l model.Lookup) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO lookups (id, game_id, players, territories, viewed_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.GameID, l.Players, l.Territories, l.ViewedAt,
	)
	if err != nil {
		return fmt.Errorf("record lookup: %w", err)
	}
	return nil
}

// Recent returns the latest lookup per game, newest first.
func (r *LookupRepo) Recent(ctx context.Context, limit int) ([]model.Lookup, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, players, territories, viewed_at FROM (
		     SELECT DISTINCT ON (game_id) id, game_id, players, territories, viewed_at
		     FROM lookups ORDER BY game_id, viewed_at DESC, id DESC
		 ) latest
		 ORDER BY viewed_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent lookups: %w", err)
	}
	defer rows.Close()

	var lookups []model.Lookup
	for rows.Next() {
		var l model.Lookup
		if err := rows.Scan(&l.ID, &l.GameID, &l.Players, &l.Territories, &l.ViewedAt); err != nil {
			return nil, fmt.Errorf("scan lookup: %w", err)
		}
		lookups = append(lookups, l)
	}
	return lookups, rows.Err()
}

// Close closes the underlying pool.
func (r *LookupRepo) Close() error {
	return r.db.Close()
}
