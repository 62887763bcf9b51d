// Package merge reconciles metadata assertions from multiple sources into
// one authoritative record per content identity. The engine applies
// tolerance-based comparison for coordinates and timestamps, infers time
// zones from indirect evidence, and records a Conflict with a fixed taxonomy
// reason whenever sources disagree instead of silently picking a winner.
package merge
