// Package mergerules holds the tunable thresholds the merge engine consults.
// Rules are plain data built from configuration once, so the engine itself
// never touches config and tests can dial tolerances directly.
package mergerules

import (
	"math"
	"time"

	"photomerge/internal/config"
	"photomerge/internal/metadata"
)

// Rules carries every tolerance the merge engine applies.
type Rules struct {
	// GPSToleranceMeters is the great-circle distance under which two
	// coordinate assertions count as the same place.
	GPSToleranceMeters float64

	// TimeTolerance bounds disagreement between timezone-aware timestamps
	// before they stop consolidating to one instant.
	TimeTolerance time.Duration

	// NaiveTimeTolerance bounds disagreement between naive timestamps,
	// which are typically rounded to the second by one source and not the
	// other.
	NaiveTimeTolerance time.Duration

	// VideoHammingThreshold is the maximum bit distance between two video
	// similarity digests that still identifies the same content.
	VideoHammingThreshold int

	// SourcePriority orders source kinds from most to least trusted.
	SourcePriority []metadata.SourceKind

	// RequiredFields are the fields whose conflicts force review routing.
	RequiredFields []metadata.Field
}

// FromConfig translates the validated configuration into engine rules.
func FromConfig(cfg *config.Config) Rules {
	fields := make([]metadata.Field, 0, len(cfg.Export.RequiredFields))
	for _, name := range cfg.Export.RequiredFields {
		fields = append(fields, metadata.Field(name))
	}
	return Rules{
		GPSToleranceMeters:    cfg.Tolerances.GPSMeters,
		TimeTolerance:         time.Duration(cfg.Tolerances.AwareTimeSeconds) * time.Second,
		NaiveTimeTolerance:    time.Duration(cfg.Tolerances.NaiveTimeSeconds) * time.Second,
		VideoHammingThreshold: cfg.Tolerances.VideoHammingThreshold,
		SourcePriority:        metadata.SourcePriority,
		RequiredFields:        fields,
	}
}

// RequiresReview reports whether a conflict on field gates export.
func (r Rules) RequiresReview(field metadata.Field) bool {
	for _, required := range r.RequiredFields {
		if required == field {
			return true
		}
	}
	return false
}

// WithinTime reports whether two aware instants agree within tolerance.
func (r Rules) WithinTime(a, b time.Time) bool {
	return absDuration(a.Sub(b)) <= r.TimeTolerance
}

// WithinNaiveTime reports whether two naive wall-clock values agree within
// the looser naive tolerance.
func (r Rules) WithinNaiveTime(a, b time.Time) bool {
	return absDuration(a.Sub(b)) <= r.NaiveTimeTolerance
}

// WithinDistance reports whether two coordinates agree within the GPS
// tolerance.
func (r Rules) WithinDistance(lat1, lon1, lat2, lon2 float64) bool {
	return HaversineMeters(lat1, lon1, lat2, lon2) <= r.GPSToleranceMeters
}

const earthRadiusMeters = 6371000.0

// HaversineMeters returns the great-circle distance between two coordinates.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
