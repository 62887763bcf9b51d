package store

import (
	"context"
	"time"

	"photomerge/internal/services"
)

// RecordFailure stores a per-file error so a batch never loses track of what
// it skipped.
func (s *Store) RecordFailure(ctx context.Context, path, stage, message string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO failures (path, stage, message, created_at) VALUES (?, ?, ?, ?)`,
		path, stage, message, now); err != nil {
		return services.Wrap(services.ErrPersistence, "store", "failure-record", path, err)
	}
	return nil
}

// ListFailures returns recorded failures, newest first, up to limit. A
// non-positive limit returns everything.
func (s *Store) ListFailures(ctx context.Context, limit int) ([]Failure, error) {
	query := `SELECT id, path, stage, message, created_at FROM failures ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "failure-list", "", err)
	}
	defer rows.Close()

	var failures []Failure
	for rows.Next() {
		var failure Failure
		var created string
		if err := rows.Scan(&failure.ID, &failure.Path, &failure.Stage, &failure.Message, &created); err != nil {
			return nil, services.Wrap(services.ErrPersistence, "store", "failure-list", "scan row", err)
		}
		failure.CreatedAt = parseTimestamp(created)
		failures = append(failures, failure)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "failure-list", "iterate", err)
	}
	return failures, nil
}

// Summarize counts catalog contents for status output.
func (s *Store) Summarize(ctx context.Context) (Stats, error) {
	var stats Stats
	queries := []struct {
		query string
		dest  *int64
	}{
		{`SELECT COUNT(1) FROM identities`, &stats.Identities},
		{`SELECT COUNT(1) FROM owners`, &stats.Owners},
		{`SELECT COUNT(1) FROM locations`, &stats.Locations},
		{`SELECT COUNT(1) FROM metadata_entries`, &stats.Entries},
		{`SELECT COUNT(1) FROM failures`, &stats.Failures},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return Stats{}, services.Wrap(services.ErrPersistence, "store", "summarize", q.query, err)
		}
	}
	return stats, nil
}
