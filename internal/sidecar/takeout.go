package sidecar

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"photomerge/internal/metadata"
	"photomerge/internal/services"
)

// Takeout models the subset of a Google Takeout sidecar this tool consumes.
// The title field carries the media filename the sidecar describes, which is
// how sidecars are linked back to their media file.
type Takeout struct {
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	URL            string       `json:"url"`
	Favorited      bool         `json:"favorited"`
	PhotoTakenTime *TakeoutTime `json:"photoTakenTime"`
	CreationTime   *TakeoutTime `json:"creationTime"`
	GeoData        *GeoData     `json:"geoData"`
	GeoDataExif    *GeoData     `json:"geoDataExif"`
}

// TakeoutTime is Google's epoch-seconds timestamp wrapper.
type TakeoutTime struct {
	Timestamp string `json:"timestamp"`
	Formatted string `json:"formatted"`
}

// Time returns the UTC instant, which is always timezone-aware.
func (t *TakeoutTime) Time() (time.Time, bool) {
	if t == nil {
		return time.Time{}, false
	}
	seconds, err := strconv.ParseInt(t.Timestamp, 10, 64)
	if err != nil || seconds <= 0 {
		return time.Time{}, false
	}
	return time.Unix(seconds, 0).UTC(), true
}

// GeoData is Google's coordinate block. An all-zero block means "no data",
// not a capture at null island.
type GeoData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

func (g *GeoData) valid() bool {
	return g != nil && (g.Latitude != 0 || g.Longitude != 0)
}

// ReadTakeout parses one sidecar file.
func ReadTakeout(path string) (Takeout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Takeout{}, services.Wrap(services.ErrExtraction, "sidecar", "read", path, err)
	}
	var doc Takeout
	if err := json.Unmarshal(data, &doc); err != nil {
		return Takeout{}, services.Wrap(services.ErrExtraction, "sidecar", "parse", path, err)
	}
	return doc, nil
}

// Entries converts the sidecar payload into source-tagged metadata entries.
func (t Takeout) Entries() []metadata.Entry {
	var entries []metadata.Entry

	if value, ok := t.PhotoTakenTime.Time(); ok {
		entries = append(entries, metadata.TimeEntry(metadata.SourceSidecar, metadata.FieldDateTaken, value, true))
	}

	geo := t.GeoData
	if !geo.valid() {
		geo = t.GeoDataExif
	}
	if geo.valid() {
		entries = append(entries,
			metadata.RealEntry(metadata.SourceSidecar, metadata.FieldGPSLatitude, geo.Latitude),
			metadata.RealEntry(metadata.SourceSidecar, metadata.FieldGPSLongitude, geo.Longitude),
		)
	}

	if t.Title != "" {
		entries = append(entries, metadata.TextEntry(metadata.SourceSidecar, metadata.FieldTitle, t.Title))
	}
	if t.Description != "" {
		entries = append(entries, metadata.TextEntry(metadata.SourceSidecar, metadata.FieldDescription, t.Description))
	}

	return entries
}
