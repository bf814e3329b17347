package db

import (
	"context"
	"fmt"
)

func (p *Pool) InsertFetchRun(ctx context.Context, run *FetchRun) error {
	if run == nil {
		return fmt.Errorf("fetch run is nil")
	}

	row := p.QueryRow(ctx, `
		INSERT INTO feed.fetch_runs (
			source_key, run_at, duration_ms,
			fetched, inserted, updated, deduped, failed,
			status, error_sample, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		RETURNING run_id`,
		run.SourceKey, run.RunAt, run.DurationMS,
		run.Fetched, run.Inserted, run.Updated, run.Deduped, run.Failed,
		run.Status, run.ErrorSample)

	if err := row.Scan(&run.RunID); err != nil {
		return fmt.Errorf("insert fetch run: %w", err)
	}
	return nil
}

const maxFetchRunListLimit = 50

func (p *Pool) ListFetchRuns(ctx context.Context, limit int) ([]*FetchRun, error) {
	if limit <= 0 || limit > maxFetchRunListLimit {
		limit = maxFetchRunListLimit
	}

	rows, err := p.Query(ctx, `
		SELECT run_id, source_key, run_at, duration_ms,
			fetched, inserted, updated, deduped, failed,
			status, error_sample, created_at
		FROM feed.fetch_runs
		ORDER BY run_at DESC
		LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("list fetch runs: %w", err)
	}
	defer rows.Close()

	var runs []*FetchRun
	for rows.Next() {
		var run FetchRun
		if err := rows.Scan(&run.RunID, &run.SourceKey, &run.RunAt, &run.DurationMS,
			&run.Fetched, &run.Inserted, &run.Updated, &run.Deduped, &run.Failed,
			&run.Status, &run.ErrorSample, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan fetch run: %w", err)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
