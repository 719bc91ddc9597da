package store

import (
	"context"
	"fmt"
	"strings"
)

func (s *Store) RecordImport(ctx context.Context, run ImportRun) error {
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("%w: import run id must not be empty", ErrInvalidInput)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_runs (
			id, source, started_at, ended_at, total, inserted, updated, unclean, failed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Source,
		timeToDBString(&run.StartedAt),
		timeToDBString(&run.EndedAt),
		run.Total,
		run.Inserted,
		run.Updated,
		run.Unclean,
		run.Failed,
	)
	return err
}

// ListImports returns the most recent import runs first.
func (s *Store) ListImports(ctx context.Context, limit int) ([]ImportRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, started_at, ended_at, total, inserted, updated, unclean, failed
		FROM import_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]ImportRun, 0)
	for rows.Next() {
		var r ImportRun
		var startedAt, endedAt string
		if err := rows.Scan(&r.ID, &r.Source, &startedAt, &endedAt, &r.Total, &r.Inserted, &r.Updated, &r.Unclean, &r.Failed); err != nil {
			return nil, err
		}
		if t, err := parseDBTime(startedAt); err == nil {
			r.StartedAt = t
		}
		if t, err := parseDBTime(endedAt); err == nil {
			r.EndedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
