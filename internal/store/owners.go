package store

import (
	"context"
	"strings"
	"time"

	"photomerge/internal/services"
)

// EnsureOwner resolves an owner by name, creating it on first use.
func (s *Store) EnsureOwner(ctx context.Context, name string) (Owner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Owner{}, services.Wrap(services.ErrValidation, "store", "owner", "empty owner name", nil)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO owners (name, created_at) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`,
		name, now); err != nil {
		return Owner{}, services.Wrap(services.ErrPersistence, "store", "owner-upsert", name, err)
	}

	var owner Owner
	var created string
	row := s.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM owners WHERE name = ?`, name)
	if err := row.Scan(&owner.ID, &owner.Name, &created); err != nil {
		return Owner{}, services.Wrap(services.ErrPersistence, "store", "owner-fetch", name, err)
	}
	owner.CreatedAt = parseTimestamp(created)
	return owner, nil
}

// OwnerSummary pairs an owner with how many files and identities it reaches.
type OwnerSummary struct {
	Owner      Owner
	Locations  int64
	Identities int64
}

// ListOwners returns every owner with location and identity counts.
func (s *Store) ListOwners(ctx context.Context) ([]OwnerSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT o.id, o.name, o.created_at,
                COUNT(l.id),
                COUNT(DISTINCT l.identity_id)
         FROM owners o
         LEFT JOIN locations l ON l.owner_id = o.id
         GROUP BY o.id
         ORDER BY o.name`)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "owner-list", "", err)
	}
	defer rows.Close()

	var summaries []OwnerSummary
	for rows.Next() {
		var summary OwnerSummary
		var created string
		if err := rows.Scan(&summary.Owner.ID, &summary.Owner.Name, &created,
			&summary.Locations, &summary.Identities); err != nil {
			return nil, services.Wrap(services.ErrPersistence, "store", "owner-list", "scan row", err)
		}
		summary.Owner.CreatedAt = parseTimestamp(created)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "owner-list", "iterate", err)
	}
	return summaries, nil
}
