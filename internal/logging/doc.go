// Package logging builds the slog loggers used across photomerge. It provides
// a console handler for interactive runs, a JSON handler for machine
// consumption, and small helpers that keep attribute keys consistent between
// components.
package logging
