package store

import (
	"time"

	"photomerge/internal/identity"
)

// Identity is one row of the identities table: a content identity key plus
// its surrogate id for joins.
type Identity struct {
	ID        int64
	Key       identity.Key
	CreatedAt time.Time
}

// Owner names a person or archive whose collection was imported.
type Owner struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Location is one concrete file on disk linked to an identity. The same
// identity may have many locations across owners; that is the dedup linkage.
type Location struct {
	ID                  int64
	IdentityID          int64
	OwnerID             int64
	Path                string
	ExportOverride      string
	SuggestedExportPath string
	CreatedAt           time.Time
}

// Failure records a per-file error kept out of the identity catalog.
type Failure struct {
	ID        int64
	Path      string
	Stage     string
	Message   string
	CreatedAt time.Time
}

// Stats summarizes catalog contents for status reporting.
type Stats struct {
	Identities int64
	Owners     int64
	Locations  int64
	Entries    int64
	Failures   int64
}
