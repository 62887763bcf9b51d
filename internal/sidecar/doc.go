// Package sidecar discovers and parses Google Takeout JSON sidecars. Sidecars
// are linked to media files through the JSON title field rather than filename
// pattern matching, with a per-directory index so each directory is listed and
// parsed once regardless of how many files it holds.
package sidecar
