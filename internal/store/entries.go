package store

import (
	"context"
	"database/sql"
	"time"

	"photomerge/internal/metadata"
	"photomerge/internal/services"
)

const (
	awareTimeLayout = time.RFC3339Nano
	naiveTimeLayout = "2006-01-02T15:04:05.999999999"
)

// UpsertEntries replaces the assertions one source makes about one location.
// Each (source, field) pair holds at most one value; re-ingesting a file
// updates assertions in place instead of appending history.
func (s *Store) UpsertEntries(ctx context.Context, locationID int64, source metadata.SourceKind, entries []metadata.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "store", "entry-upsert", "begin tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO metadata_sources (location_id, kind, created_at) VALUES (?, ?, ?)
         ON CONFLICT (location_id, kind) DO NOTHING`,
		locationID, string(source), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return services.Wrap(services.ErrPersistence, "store", "entry-upsert", "ensure source", err)
	}

	var sourceID int64
	row := tx.QueryRowContext(ctx,
		`SELECT id FROM metadata_sources WHERE location_id = ? AND kind = ?`,
		locationID, string(source))
	if err := row.Scan(&sourceID); err != nil {
		return services.Wrap(services.ErrPersistence, "store", "entry-upsert", "fetch source", err)
	}

	for _, entry := range entries {
		var text, timeValue any
		var real float64
		switch entry.Kind {
		case metadata.KindText:
			text = entry.Text
		case metadata.KindReal:
			real = entry.Real
		case metadata.KindTime:
			if entry.TZAware {
				timeValue = entry.Time.Format(awareTimeLayout)
			} else {
				timeValue = entry.Time.Format(naiveTimeLayout)
			}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO metadata_entries (source_id, field, value_kind, text_value, real_value, time_value, tz_aware)
             VALUES (?, ?, ?, ?, ?, ?, ?)
             ON CONFLICT (source_id, field) DO UPDATE SET
                 value_kind = excluded.value_kind,
                 text_value = excluded.text_value,
                 real_value = excluded.real_value,
                 time_value = excluded.time_value,
                 tz_aware = excluded.tz_aware`,
			sourceID, string(entry.Field), int(entry.Kind), text, real, timeValue,
			boolToInt(entry.TZAware)); err != nil {
			return services.Wrap(services.ErrPersistence, "store", "entry-upsert", string(entry.Field), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return services.Wrap(services.ErrPersistence, "store", "entry-upsert", "commit", err)
	}
	return nil
}

// EntriesForIdentity loads every assertion recorded for one identity across
// all of its locations and sources, in stable order.
func (s *Store) EntriesForIdentity(ctx context.Context, identityID int64) ([]metadata.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ms.kind, me.field, me.value_kind, me.text_value, me.real_value, me.time_value, me.tz_aware
         FROM metadata_entries me
         JOIN metadata_sources ms ON ms.id = me.source_id
         JOIN locations l ON l.id = ms.location_id
         WHERE l.identity_id = ?
         ORDER BY me.field, ms.kind, me.id`, identityID)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "entry-list", "", err)
	}
	defer rows.Close()

	var entries []metadata.Entry
	for rows.Next() {
		var sourceKind string
		var valueKind int
		var text, timeValue sql.NullString
		var real sql.NullFloat64
		var aware int
		var entry metadata.Entry
		if err := rows.Scan(&sourceKind, &entry.Field, &valueKind, &text, &real, &timeValue, &aware); err != nil {
			return nil, services.Wrap(services.ErrPersistence, "store", "entry-list", "scan row", err)
		}
		source, ok := metadata.ParseSourceKind(sourceKind)
		if !ok {
			continue
		}
		entry.Source = source
		entry.Kind = metadata.ValueKind(valueKind)
		entry.Text = text.String
		entry.Real = real.Float64
		entry.TZAware = aware != 0
		if entry.Kind == metadata.KindTime && timeValue.Valid {
			parsed, err := parseEntryTime(timeValue.String, entry.TZAware)
			if err != nil {
				continue
			}
			entry.Time = parsed
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "entry-list", "iterate", err)
	}
	return entries, nil
}

func parseEntryTime(value string, aware bool) (time.Time, error) {
	if aware {
		return time.Parse(awareTimeLayout, value)
	}
	parsed, err := time.Parse(naiveTimeLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
