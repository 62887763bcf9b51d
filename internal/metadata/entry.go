package metadata

import (
	"fmt"
	"time"
)

// ValueKind distinguishes the typed payload carried by an Entry.
type ValueKind int

const (
	KindText ValueKind = iota
	KindReal
	KindTime
)

// Entry is one attribute assertion made by one source about one file.
// Entries are immutable once written; re-ingesting the same location and
// source replaces the previous assertion instead of appending a duplicate.
type Entry struct {
	Source SourceKind
	Field  Field
	Kind   ValueKind

	Text string
	Real float64
	Time time.Time
	// TZAware reports whether Time carries an explicit timezone or UTC
	// marker. Naive wall-clock values keep TZAware false and are stored in
	// their original local representation.
	TZAware bool
}

// TextEntry builds a pass-through text assertion.
func TextEntry(source SourceKind, field Field, value string) Entry {
	return Entry{Source: source, Field: field, Kind: KindText, Text: value}
}

// RealEntry builds a numeric assertion (GPS coordinates).
func RealEntry(source SourceKind, field Field, value float64) Entry {
	return Entry{Source: source, Field: field, Kind: KindReal, Real: value}
}

// TimeEntry builds a date assertion with the given awareness flag.
func TimeEntry(source SourceKind, field Field, value time.Time, aware bool) Entry {
	return Entry{Source: source, Field: field, Kind: KindTime, Time: value, TZAware: aware}
}

// ValueString renders the typed payload for conflict reports.
func (e Entry) ValueString() string {
	switch e.Kind {
	case KindReal:
		return fmt.Sprintf("%.8g", e.Real)
	case KindTime:
		if e.TZAware {
			return e.Time.Format(time.RFC3339)
		}
		return e.Time.Format("2006-01-02T15:04:05")
	default:
		return e.Text
	}
}
