package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldOwner is the standardized structured logging key for owner names.
	FieldOwner = "owner"
	// FieldPath is the standardized structured logging key for filesystem paths.
	FieldPath = "path"
	// FieldIdentity is the standardized structured logging key for content identity keys.
	FieldIdentity = "identity"
	// FieldRunID is the standardized structured logging key for ingest/export run identifiers.
	FieldRunID = "run_id"
)
