package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

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
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lookups (id, game_id, players, territories, viewed_at)
		VALUES (?, ?, ?, ?, ?)
	`, l.ID, l.GameID, l.Players, l.Territories, l.ViewedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record lookup: %w", err)
	}
	return nil
}

// Recent returns the latest lookup per game, newest first. Lookups of one
// game in the same millisecond are ordered by id.
func (r *LookupRepo) Recent(ctx context.Context, limit int) ([]model.Lookup, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, game_id, players, territories, viewed_at FROM (
			SELECT id, game_id, players, territories, viewed_at,
			       ROW_NUMBER() OVER (PARTITION BY game_id ORDER BY viewed_at DESC, id DESC) AS rn
			FROM lookups
		) ranked
		WHERE rn = 1
		ORDER BY viewed_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent lookups: %w", err)
	}
	defer rows.Close()

	var lookups []model.Lookup
	for rows.Next() {
		var l model.Lookup
		var viewedAt int64
		if err := rows.Scan(&l.ID, &l.GameID, &l.Players, &l.Territories, &viewedAt); err != nil {
			return nil, fmt.Errorf("scan lookup: %w", err)
		}
		l.ViewedAt = time.UnixMilli(viewedAt).UTC()
		lookups = append(lookups, l)
	}
	return lookups, rows.Err()
}

// Close closes the database.
func (r *LookupRepo) Close() error {
	return r.db.Close()
}
