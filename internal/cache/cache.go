// Package cache persists finished playlist analyses so repeated requests
// for the same playlist are served without recomputing.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avollmer/go-playlist-insights/internal/analysis"
)

// DefaultTTL is how long a stored analysis stays fresh.
const DefaultTTL = 7 * 24 * time.Hour

const schema = `
	CREATE TABLE IF NOT EXISTS analysis_results (
		playlist_id TEXT NOT NULL,
		variant     TEXT NOT NULL,
		payload     JSONB NOT NULL,
		fetched_at  TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (playlist_id, variant)
	)
`

// Store keeps analysis results in PostgreSQL, one row per playlist and
// pipeline variant.
type Store struct {
	pool *pgxpool.Pool
	ttl  time.Duration
	now  func() time.Time
}

// New opens a connection pool against the given URL, verifies it and
// ensures the result table exists.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	return &Store{pool: pool, ttl: DefaultTTL, now: time.Now}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Get returns the stored result for a playlist and variant. A row older
// than the TTL is reported as a miss so the caller recomputes.
func (s *Store) Get(ctx context.Context, playlistID, variant string) (*analysis.Result, bool, error) {
	query := `
		SELECT payload, fetched_at
		FROM analysis_results
		WHERE playlist_id = $1 AND variant = $2
	`

	var payload []byte
	var fetchedAt time.Time
	err := s.pool.QueryRow(ctx, query, playlistID, variant).Scan(&payload, &fetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying cached analysis: %w", err)
	}

	if s.now().Sub(fetchedAt) > s.ttl {
		return nil, false, nil
	}

	var result analysis.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, fmt.Errorf("decoding cached analysis: %w", err)
	}
	return &result, true, nil
}

// Put stores a result, replacing any previous row for the same playlist
// and variant.
func (s *Store) Put(ctx context.Context, playlistID, variant string, result *analysis.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding analysis: %w", err)
	}

	query := `
		INSERT INTO analysis_results (playlist_id, variant, payload, fetched_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (playlist_id, variant) DO UPDATE SET
			payload = EXCLUDED.payload,
			fetched_at = EXCLUDED.fetched_at
	`
	if _, err := s.pool.Exec(ctx, query, playlistID, variant, payload, s.now()); err != nil {
		return fmt.Errorf("upserting cached analysis: %w", err)
	}
	return nil
}

var _ analysis.ResultCache = (*Store)(nil)
