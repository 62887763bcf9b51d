package merge

import (
	"fmt"
	"sort"

	"photomerge/internal/mergerules"
	"photomerge/internal/metadata"
)

// Engine reconciles every metadata assertion recorded for one content
// identity into a single merged record. It is pure and deterministic:
// identical entry sets always produce identical records, and nothing is
// mutated between calls, so identities can be merged concurrently.
type Engine struct {
	rules mergerules.Rules
	zones TimezoneResolver
}

// NewEngine builds an engine. zones may be nil, in which case no GPS-based
// timezone inference is attempted.
func NewEngine(rules mergerules.Rules, zones TimezoneResolver) *Engine {
	return &Engine{rules: rules, zones: zones}
}

// Merge resolves all entries for identity into one record. seq carries
// cross-identity messaging-app sequence assertions; pass nil to skip the
// consistency check.
func (e *Engine) Merge(identity string, entries []metadata.Entry, seq SequenceIndex) MergedRecord {
	sorted := make([]metadata.Entry, len(entries))
	copy(sorted, entries)
	sortEntries(sorted)

	record := MergedRecord{
		Identity: identity,
		Fields:   make(map[metadata.Field]string),
	}

	e.mergeGPS(sorted, &record)
	e.resolveDate(sorted, seq, &record)
	e.mergeFields(sorted, &record)
	return record
}

// sortEntries imposes a stable processing order so map iteration upstream
// can never change the outcome: field, then source priority, then value.
func sortEntries(entries []metadata.Entry) {
	rank := make(map[metadata.SourceKind]int, len(metadata.SourcePriority))
	for i, kind := range metadata.SourcePriority {
		rank[kind] = i
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		if rank[a.Source] != rank[b.Source] {
			return rank[a.Source] < rank[b.Source]
		}
		return a.ValueString() < b.ValueString()
	})
}

func formatCoordinate(lat, lon float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lon)
}

type coordinate struct {
	source metadata.SourceKind
	lat    float64
	lon    float64
}

// mergeGPS pairs latitude/longitude assertions per source, prefers the
// highest-priority source, and demands every other source corroborate it
// within the distance tolerance.
func (e *Engine) mergeGPS(entries []metadata.Entry, record *MergedRecord) {
	lats := make(map[metadata.SourceKind]float64)
	lons := make(map[metadata.SourceKind]float64)
	for _, entry := range entries {
		switch entry.Field {
		case metadata.FieldGPSLatitude:
			lats[entry.Source] = entry.Real
		case metadata.FieldGPSLongitude:
			lons[entry.Source] = entry.Real
		}
	}

	var coords []coordinate
	for _, kind := range metadata.SourcePriority {
		lat, okLat := lats[kind]
		lon, okLon := lons[kind]
		if okLat && okLon {
			coords = append(coords, coordinate{source: kind, lat: lat, lon: lon})
		}
	}
	if len(coords) == 0 {
		return
	}

	preferred := coords[0]
	for _, other := range coords[1:] {
		if !e.rules.WithinDistance(preferred.lat, preferred.lon, other.lat, other.lon) {
			candidates := make([]Candidate, 0, len(coords))
			for _, c := range coords {
				candidates = append(candidates, Candidate{
					Value:  formatCoordinate(c.lat, c.lon),
					Source: c.source,
				})
			}
			record.Conflicts = append(record.Conflicts, Conflict{
				Field:      metadata.FieldGPSLatitude,
				Candidates: candidates,
				Reason:     ReasonDistanceExceeded,
			})
			return
		}
	}

	confidence := ConfidenceUnverified
	if len(coords) > 1 {
		confidence = ConfidenceVerified
	}
	record.GPS = ResolvedGPS{
		Latitude:     preferred.lat,
		Longitude:    preferred.lon,
		Source:       preferred.source,
		Confidence:   confidence,
		Corroborated: len(coords) > 1,
		Resolved:     true,
	}
}

// mergeFields handles the pass-through fields: a single distinct non-empty
// value is accepted, disagreement is a conflict with no value selected.
func (e *Engine) mergeFields(entries []metadata.Entry, record *MergedRecord) {
	passThrough := []metadata.Field{
		metadata.FieldTitle,
		metadata.FieldDescription,
		metadata.FieldCameraMake,
		metadata.FieldCameraModel,
	}
	for _, field := range passThrough {
		var candidates []Candidate
		distinct := make(map[string]bool)
		for _, entry := range entries {
			if entry.Field != field || entry.Text == "" {
				continue
			}
			if !distinct[entry.Text] {
				distinct[entry.Text] = true
				candidates = append(candidates, Candidate{Value: entry.Text, Source: entry.Source})
			}
		}
		switch len(distinct) {
		case 0:
		case 1:
			record.Fields[field] = candidates[0].Value
		default:
			record.Conflicts = append(record.Conflicts, Conflict{
				Field:      field,
				Candidates: candidates,
				Reason:     ReasonSourceDisagreement,
			})
		}
	}
}
