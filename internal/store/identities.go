package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"photomerge/internal/identity"
	"photomerge/internal/services"
)

// FindOrCreateIdentity resolves key to its identity row, inserting it when
// unseen. The insert relies on the UNIQUE(kind, digest) constraint so that
// two workers hashing duplicate content concurrently converge on one row.
func (s *Store) FindOrCreateIdentity(ctx context.Context, key identity.Key) (Identity, bool, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO identities (kind, digest, created_at) VALUES (?, ?, ?)
         ON CONFLICT (kind, digest) DO NOTHING`,
		string(key.Kind), key.Digest, now)
	if err != nil {
		return Identity{}, false, services.Wrap(services.ErrPersistence, "store", "identity-upsert", key.String(), err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return Identity{}, false, services.Wrap(services.ErrPersistence, "store", "identity-upsert", "rows affected", err)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, digest, created_at FROM identities WHERE kind = ? AND digest = ?`,
		string(key.Kind), key.Digest)
	ident, err := scanIdentity(row)
	if err != nil {
		return Identity{}, false, services.Wrap(services.ErrPersistence, "store", "identity-fetch", key.String(), err)
	}
	return ident, inserted > 0, nil
}

// FindSimilarVideo walks the stored video digests looking for one within
// threshold Hamming bits of digest. The walk is linear; video counts are
// small relative to images and the comparison is a handful of XORs.
func (s *Store) FindSimilarVideo(ctx context.Context, digest string, threshold int) (Identity, bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, digest, created_at FROM identities WHERE kind = ? ORDER BY id`,
		string(identity.KindVideo))
	if err != nil {
		return Identity{}, false, services.Wrap(services.ErrPersistence, "store", "video-scan", "", err)
	}
	defer rows.Close()

	best := Identity{}
	bestDistance := threshold + 1
	for rows.Next() {
		var candidate Identity
		var kind, created string
		if err := rows.Scan(&candidate.ID, &kind, &candidate.Key.Digest, &created); err != nil {
			return Identity{}, false, services.Wrap(services.ErrPersistence, "store", "video-scan", "scan row", err)
		}
		candidate.Key.Kind = identity.Kind(kind)
		candidate.CreatedAt = parseTimestamp(created)

		distance, err := identity.HammingDistance(digest, candidate.Key.Digest)
		if err != nil {
			// Digest width changed across versions; skip rather than fail.
			continue
		}
		if distance < bestDistance {
			best = candidate
			bestDistance = distance
		}
	}
	if err := rows.Err(); err != nil {
		return Identity{}, false, services.Wrap(services.ErrPersistence, "store", "video-scan", "iterate", err)
	}
	if bestDistance <= threshold {
		return best, true, nil
	}
	return Identity{}, false, nil
}

// GetIdentity fetches one identity by id.
func (s *Store) GetIdentity(ctx context.Context, id int64) (Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, digest, created_at FROM identities WHERE id = ?`, id)
	ident, err := scanIdentity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Identity{}, services.Wrap(services.ErrValidation, "store", "identity-fetch", "unknown identity", err)
	}
	if err != nil {
		return Identity{}, services.Wrap(services.ErrPersistence, "store", "identity-fetch", "", err)
	}
	return ident, nil
}

// ListIdentities returns every identity ordered by id.
func (s *Store) ListIdentities(ctx context.Context) ([]Identity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, digest, created_at FROM identities ORDER BY id`)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "identity-list", "", err)
	}
	defer rows.Close()

	var identities []Identity
	for rows.Next() {
		var ident Identity
		var kind, created string
		if err := rows.Scan(&ident.ID, &kind, &ident.Key.Digest, &created); err != nil {
			return nil, services.Wrap(services.ErrPersistence, "store", "identity-list", "scan row", err)
		}
		ident.Key.Kind = identity.Kind(kind)
		ident.CreatedAt = parseTimestamp(created)
		identities = append(identities, ident)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "identity-list", "iterate", err)
	}
	return identities, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (Identity, error) {
	var ident Identity
	var kind, created string
	if err := row.Scan(&ident.ID, &kind, &ident.Key.Digest, &created); err != nil {
		return Identity{}, err
	}
	ident.Key.Kind = identity.Kind(kind)
	ident.CreatedAt = parseTimestamp(created)
	return ident, nil
}

func parseTimestamp(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
