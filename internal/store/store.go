package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS dataset_runs (
	id            UUID PRIMARY KEY,
	input_dir     TEXT NOT NULL,
	profile       TEXT NOT NULL,
	seed          BIGINT NOT NULL,
	options       JSONB NOT NULL,
	channels      INTEGER NOT NULL,
	conversations INTEGER NOT NULL,
	survivors     INTEGER NOT NULL,
	train_count   INTEGER NOT NULL,
	val_count     INTEGER NOT NULL,
	started_at    TIMESTAMPTZ NOT NULL,
	finished_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS dataset_samples (
	run_id   UUID NOT NULL REFERENCES dataset_runs(id) ON DELETE CASCADE,
	split    TEXT NOT NULL,
	position INTEGER NOT NULL,
	text     TEXT NOT NULL,
	PRIMARY KEY (run_id, split, position)
);`

// EnsureSchema creates the run tables if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
