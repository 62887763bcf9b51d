// Command photomerge consolidates photo and video collections. It imports
// directory trees into a content-identity catalog, merges metadata assertions
// from EXIF, sidecars, and filenames into one record per identity, and exports
// a single organized copy of each unique file.
package main
