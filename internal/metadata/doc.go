// Package metadata defines the typed metadata model shared by ingestion and
// merging: the closed field set, source-tagged entries with explicit
// timezone-awareness flags, and the adapters that normalize embedded EXIF
// tags and filename heuristics into entries.
package metadata
