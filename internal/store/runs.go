package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/chilly/internal/dataset"
)

// Split names used in dataset_samples.
const (
	SplitTrain = "train"
	SplitVal   = "val"
)

// RunSummary is one row of dataset_runs.
type RunSummary struct {
	ID            uuid.UUID `json:"id"`
	InputDir      string    `json:"input_dir"`
	Profile       string    `json:"profile"`
	Channels      int       `json:"channels"`
	Conversations int       `json:"conversations"`
	Survivors     int       `json:"survivors"`
	Train         int       `json:"train"`
	Val           int       `json:"val"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// WriteRun stores a finished run and all of its samples in one transaction.
func (s *Store) WriteRun(ctx context.Context, m *dataset.Manifest, train, val []string) error {
	opts, err := json.Marshal(m.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO dataset_runs (id, input_dir, profile, seed, options, channels, conversations, survivors, train_count, val_count, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.RunID, m.InputDir, m.Profile, int64(m.Seed), opts,
		m.Result.Channels, m.Result.Conversations, m.Result.Survivors, m.Result.Train, m.Result.Val,
		m.StartedAt, m.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	rows := sampleRows(m.RunID, train, val)
	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"dataset_samples"},
		[]string{"run_id", "split", "position", "text"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy samples: %w", err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("copy samples: wrote %d of %d rows", n, len(rows))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func sampleRows(runID uuid.UUID, train, val []string) [][]any {
	rows := make([][]any, 0, len(train)+len(val))
	for i, t := range train {
		rows = append(rows, []any{runID, SplitTrain, i, t})
	}
	for i, t := range val {
		rows = append(rows, []any{runID, SplitVal, i, t})
	}
	return rows
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, input_dir, profile, channels, conversations, survivors, train_count, val_count, started_at, finished_at
		FROM dataset_runs
		ORDER BY started_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.InputDir, &r.Profile, &r.Channels, &r.Conversations, &r.Survivors, &r.Train, &r.Val, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunSamples returns the stored texts of one split of a run, in order.
func (s *Store) RunSamples(ctx context.Context, runID uuid.UUID, split string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT text FROM dataset_samples
		WHERE run_id = $1 AND split = $2
		ORDER BY position`,
		runID, split,
	)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
