package store

import (
	"context"
	"database/sql"
	"time"

	"photomerge/internal/services"
)

// UpsertLocation links a concrete file path under an owner to an identity.
// Re-importing the same path updates the linkage instead of duplicating it,
// which is what makes ingestion idempotent.
func (s *Store) UpsertLocation(ctx context.Context, identityID, ownerID int64, path string) (Location, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO locations (identity_id, owner_id, path, created_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT (owner_id, path) DO UPDATE SET identity_id = excluded.identity_id`,
		identityID, ownerID, path, now); err != nil {
		return Location{}, services.Wrap(services.ErrPersistence, "store", "location-upsert", path, err)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, identity_id, owner_id, path, export_override, suggested_export_path, created_at
         FROM locations WHERE owner_id = ? AND path = ?`, ownerID, path)
	location, err := scanLocation(row)
	if err != nil {
		return Location{}, services.Wrap(services.ErrPersistence, "store", "location-fetch", path, err)
	}
	return location, nil
}

// SetExportOverride pins a manual destination for one location. An empty
// value clears the override.
func (s *Store) SetExportOverride(ctx context.Context, locationID int64, override string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE locations SET export_override = ? WHERE id = ?`,
		nullableString(override), locationID); err != nil {
		return services.Wrap(services.ErrPersistence, "store", "location-override", "", err)
	}
	return nil
}

// SetSuggestedExportPath records the classifier's suggestion for review.
func (s *Store) SetSuggestedExportPath(ctx context.Context, locationID int64, suggestion string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE locations SET suggested_export_path = ? WHERE id = ?`,
		nullableString(suggestion), locationID); err != nil {
		return services.Wrap(services.ErrPersistence, "store", "location-suggest", "", err)
	}
	return nil
}

// LocationsForIdentity returns every file linked to one identity, ordered
// by id for stable output.
func (s *Store) LocationsForIdentity(ctx context.Context, identityID int64) ([]Location, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, identity_id, owner_id, path, export_override, suggested_export_path, created_at
         FROM locations WHERE identity_id = ? ORDER BY id`, identityID)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "location-list", "", err)
	}
	defer rows.Close()
	return collectLocations(rows)
}

// LocationsUnder returns an owner's locations whose path starts with the
// given prefix, ordered by path.
func (s *Store) LocationsUnder(ctx context.Context, ownerID int64, prefix string) ([]Location, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, identity_id, owner_id, path, export_override, suggested_export_path, created_at
         FROM locations WHERE owner_id = ? AND path LIKE ? ORDER BY path`,
		ownerID, prefix+"%")
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "location-under", prefix, err)
	}
	defer rows.Close()
	return collectLocations(rows)
}

// IdentitiesForOwner returns all identities reachable from one owner.
func (s *Store) IdentitiesForOwner(ctx context.Context, ownerID int64) ([]Identity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT i.id, i.kind, i.digest, i.created_at
         FROM identities i
         JOIN locations l ON l.identity_id = i.id
         WHERE l.owner_id = ?
         ORDER BY i.id`, ownerID)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "identity-by-owner", "", err)
	}
	defer rows.Close()

	var identities []Identity
	for rows.Next() {
		ident, err := scanIdentity(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrPersistence, "store", "identity-by-owner", "scan row", err)
		}
		identities = append(identities, ident)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "identity-by-owner", "iterate", err)
	}
	return identities, nil
}

func collectLocations(rows *sql.Rows) ([]Location, error) {
	var locations []Location
	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrPersistence, "store", "location-list", "scan row", err)
		}
		locations = append(locations, location)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "location-list", "iterate", err)
	}
	return locations, nil
}

func scanLocation(row rowScanner) (Location, error) {
	var location Location
	var override, suggested sql.NullString
	var created string
	if err := row.Scan(&location.ID, &location.IdentityID, &location.OwnerID,
		&location.Path, &override, &suggested, &created); err != nil {
		return Location{}, err
	}
	location.ExportOverride = override.String
	location.SuggestedExportPath = suggested.String
	location.CreatedAt = parseTimestamp(created)
	return location, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
