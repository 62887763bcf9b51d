package merge

import (
	"time"

	"photomerge/internal/metadata"
)

// Confidence grades how well-supported a resolved value is.
type Confidence string

const (
	// ConfidenceVerified marks values corroborated by independent sources.
	ConfidenceVerified Confidence = "verified"
	// ConfidenceUnverified marks single-source values accepted as-is.
	ConfidenceUnverified Confidence = "unverified"
	// ConfidenceEstimate marks values recovered from filename patterns only.
	ConfidenceEstimate Confidence = "estimate"
)

// Reason is the fixed conflict taxonomy surfaced to the operator.
type Reason string

const (
	ReasonDistanceExceeded   Reason = "distance-exceeded"
	ReasonTimeExceeded       Reason = "time-exceeded"
	ReasonZoneMismatch       Reason = "zone-mismatch"
	ReasonSourceDisagreement Reason = "source-disagreement"
	ReasonUnverifiable       Reason = "unverifiable"
)

// Candidate is one competing (value, source) pair inside a conflict.
type Candidate struct {
	Value  string
	Source metadata.SourceKind
}

// Conflict records a disagreement between sources for one field. Conflicts
// are outcomes, not errors: the engine always completes and reports them on
// the merged record.
type Conflict struct {
	Field      metadata.Field
	Candidates []Candidate
	Reason     Reason
}

// ResolvedGPS is the merged coordinate outcome.
type ResolvedGPS struct {
	Latitude     float64
	Longitude    float64
	Source       metadata.SourceKind
	Confidence   Confidence
	Corroborated bool
	Resolved     bool
}

// ResolvedDate is the merged date-taken outcome. Aware reports whether Time
// carries a trustworthy zone; a naive resolution keeps the original
// wall-clock reading without claiming an absolute instant.
type ResolvedDate struct {
	Time       time.Time
	Aware      bool
	Confidence Confidence
	Resolved   bool
}

// MergedRecord is the engine's only output: one authoritative record per
// content identity, with enough provenance to explain every choice.
type MergedRecord struct {
	Identity  string
	Date      ResolvedDate
	GPS       ResolvedGPS
	Fields    map[metadata.Field]string
	Conflicts []Conflict
}

// HasConflict reports whether any conflict was recorded for field.
func (r MergedRecord) HasConflict(field metadata.Field) bool {
	for _, c := range r.Conflicts {
		if c.Field == field {
			return true
		}
	}
	return false
}

// SequenceIndex maps a messaging-app sequence identifier to every date
// asserted for it across all content identities in a run. The ingest layer
// builds it once; the engine consults it to catch overlapping exports that
// reuse sequence numbers.
type SequenceIndex map[string][]time.Time
