package merge

import (
	"fmt"
	"sort"
	"time"

	"photomerge/internal/metadata"
)

// Real timezone offsets fall on 15-minute boundaries; inferred offsets are
// snapped to absorb second-level rounding between sources.
const offsetGranularity = 15 * time.Minute

// maxZoneOffset bounds a plausible UTC offset. Differences beyond it are
// clock errors, not timezones.
const maxZoneOffset = 14 * time.Hour

// resolveDate runs the date/time decision table. The progression is fixed:
// aware consolidation first, then naive-based offset inference, then GPS
// zone fallback, then consistent-offset fallback, then filename-derived
// estimates as a last resort.
func (e *Engine) resolveDate(entries []metadata.Entry, seq SequenceIndex, record *MergedRecord) {
	var aware, naive, derived []metadata.Entry
	seqID := ""
	for _, entry := range entries {
		if entry.Field == metadata.FieldWhatsAppSequence {
			seqID = entry.Text
			continue
		}
		if entry.Field != metadata.FieldDateTaken {
			continue
		}
		switch {
		case entry.TZAware:
			aware = append(aware, entry)
		case entry.Source == metadata.SourceFilename || entry.Source == metadata.SourceWhatsApp:
			derived = append(derived, entry)
		default:
			naive = append(naive, entry)
		}
	}

	zone := e.gpsZone(record)

	seqConsistent := true
	if seqID != "" {
		if asserted, ok := whatsAppAssertion(derived); ok {
			seqConsistent = e.checkSequence(seqID, asserted, seq, record)
		}
	}

	switch {
	case len(aware) > 0:
		e.resolveWithAnchor(aware, naive, zone, record)
	case len(naive) > 0:
		e.resolveNaiveOnly(naive, zone, record)
	case len(derived) > 0 && seqConsistent:
		record.Date = ResolvedDate{
			Time:       wallClock(derived[0].Time),
			Confidence: ConfidenceEstimate,
			Resolved:   true,
		}
	}
}

// resolveWithAnchor handles the aware-anchor branch: consolidate aware
// instants to one UTC anchor, then pick the local zone from the best
// available evidence.
func (e *Engine) resolveWithAnchor(aware, naive []metadata.Entry, zone *time.Location, record *MergedRecord) {
	instants := make([]time.Time, 0, len(aware))
	for _, entry := range aware {
		instants = append(instants, entry.Time.UTC())
	}
	sort.Slice(instants, func(i, j int) bool { return instants[i].Before(instants[j]) })

	if spread := instants[len(instants)-1].Sub(instants[0]); spread > e.rules.TimeTolerance {
		record.Conflicts = append(record.Conflicts, Conflict{
			Field:      metadata.FieldDateTaken,
			Candidates: dateCandidates(aware),
			Reason:     ReasonTimeExceeded,
		})
		return
	}
	anchor := instants[0]

	confidence := ConfidenceUnverified
	if len(aware) > 1 {
		confidence = ConfidenceVerified
	}

	naiveValues := uniqueWallTimes(naive)
	singleNaive, haveNaive := singleWallTime(naiveValues, e.rules.NaiveTimeTolerance)

	if haveNaive {
		if zone != nil {
			expected := wallClock(anchor.In(zone))
			diff := singleNaive.Sub(expected)
			if absDuration(diff) <= e.rules.NaiveTimeTolerance {
				record.Date = ResolvedDate{
					Time:       anchor.In(zone),
					Aware:      true,
					Confidence: ConfidenceVerified,
					Resolved:   true,
				}
				return
			}
			reason := ReasonTimeExceeded
			if looksLikeZoneError(diff, e.rules.NaiveTimeTolerance) {
				reason = ReasonZoneMismatch
			}
			record.Conflicts = append(record.Conflicts, Conflict{
				Field:      metadata.FieldDateTaken,
				Candidates: dateCandidates(append(append([]metadata.Entry{}, aware...), naive...)),
				Reason:     reason,
			})
			return
		}

		// No GPS zone: the naive value is taken as the local reading and
		// the offset computed from its distance to the anchor.
		offset := singleNaive.Sub(wallClock(anchor)).Round(offsetGranularity)
		if absDuration(offset) > maxZoneOffset {
			record.Conflicts = append(record.Conflicts, Conflict{
				Field:      metadata.FieldDateTaken,
				Candidates: dateCandidates(append(append([]metadata.Entry{}, aware...), naive...)),
				Reason:     ReasonTimeExceeded,
			})
			return
		}
		loc := time.FixedZone(formatOffset(offset), int(offset.Seconds()))
		record.Date = ResolvedDate{
			Time:       anchor.In(loc),
			Aware:      true,
			Confidence: confidence,
			Resolved:   true,
		}
		return
	}

	if zone != nil {
		record.Date = ResolvedDate{Time: anchor.In(zone), Aware: true, Confidence: confidence, Resolved: true}
	} else if loc, ok := consistentOffsetZone(aware); ok {
		record.Date = ResolvedDate{Time: anchor.In(loc), Aware: true, Confidence: confidence, Resolved: true}
	} else {
		record.Conflicts = append(record.Conflicts, Conflict{
			Field:      metadata.FieldDateTaken,
			Candidates: dateCandidates(aware),
			Reason:     ReasonUnverifiable,
		})
		return
	}

	if len(naiveValues) > 1 {
		// A value was still chosen from higher-priority data, but the
		// ambiguity in the sources is worth surfacing.
		record.Conflicts = append(record.Conflicts, Conflict{
			Field:      metadata.FieldDateTaken,
			Candidates: dateCandidates(naive),
			Reason:     ReasonSourceDisagreement,
		})
	}
}

// resolveNaiveOnly handles the branch with no aware anchor at all.
func (e *Engine) resolveNaiveOnly(naive []metadata.Entry, zone *time.Location, record *MergedRecord) {
	values := uniqueWallTimes(naive)

	if value, ok := singleWallTime(values, e.rules.NaiveTimeTolerance); ok {
		if zone != nil {
			local := time.Date(value.Year(), value.Month(), value.Day(),
				value.Hour(), value.Minute(), value.Second(), value.Nanosecond(), zone)
			record.Date = ResolvedDate{Time: local, Aware: true, Confidence: ConfidenceUnverified, Resolved: true}
			return
		}
		record.Date = ResolvedDate{Time: value, Confidence: ConfidenceUnverified, Resolved: true}
		return
	}

	// Two distinct values can still be one capture when one source stored
	// UTC and the other stored local time for the same instant.
	if zone != nil && len(values) == 2 {
		for i := 0; i < 2; i++ {
			utcCandidate := values[i]
			localCandidate := values[1-i]
			asUTC := time.Date(utcCandidate.Year(), utcCandidate.Month(), utcCandidate.Day(),
				utcCandidate.Hour(), utcCandidate.Minute(), utcCandidate.Second(),
				utcCandidate.Nanosecond(), time.UTC)
			localized := wallClock(asUTC.In(zone))
			if absDuration(localized.Sub(localCandidate)) <= e.rules.NaiveTimeTolerance {
				record.Date = ResolvedDate{
					Time:       asUTC.In(zone),
					Aware:      true,
					Confidence: ConfidenceVerified,
					Resolved:   true,
				}
				return
			}
		}
	}

	record.Conflicts = append(record.Conflicts, Conflict{
		Field:      metadata.FieldDateTaken,
		Candidates: dateCandidates(naive),
		Reason:     ReasonSourceDisagreement,
	})
}

// checkSequence compares this identity's messaging-app date assertion
// against every other assertion recorded for the same sequence identifier.
func (e *Engine) checkSequence(seqID string, asserted time.Time, index SequenceIndex, record *MergedRecord) bool {
	if index == nil {
		return true
	}
	for _, other := range index[seqID] {
		if !e.rules.WithinNaiveTime(asserted, other) {
			record.Conflicts = append(record.Conflicts, Conflict{
				Field: metadata.FieldDateTaken,
				Candidates: []Candidate{
					{Value: asserted.Format("2006-01-02"), Source: metadata.SourceWhatsApp},
					{Value: other.Format("2006-01-02"), Source: metadata.SourceWhatsApp},
				},
				Reason: ReasonSourceDisagreement,
			})
			return false
		}
	}
	return true
}

func (e *Engine) gpsZone(record *MergedRecord) *time.Location {
	if e.zones == nil || !record.GPS.Resolved {
		return nil
	}
	return e.zones.Zone(record.GPS.Latitude, record.GPS.Longitude)
}

func whatsAppAssertion(derived []metadata.Entry) (time.Time, bool) {
	for _, entry := range derived {
		if entry.Source == metadata.SourceWhatsApp {
			return wallClock(entry.Time), true
		}
	}
	return time.Time{}, false
}

// consistentOffsetZone returns a usable zone when the aware sources agree on
// a single offset, including the case where one source normalized to UTC and
// another kept the local offset.
func consistentOffsetZone(aware []metadata.Entry) (*time.Location, bool) {
	offsets := make(map[int]bool)
	for _, entry := range aware {
		_, off := entry.Time.Zone()
		offsets[off] = true
	}
	if len(offsets) == 2 && offsets[0] {
		delete(offsets, 0)
	}
	if len(offsets) != 1 {
		return nil, false
	}
	for off := range offsets {
		d := time.Duration(off) * time.Second
		return time.FixedZone(formatOffset(d), off), true
	}
	return nil, false
}

// wallClock reinterprets a timestamp's displayed components in UTC so naive
// wall-clock values can be compared with plain subtraction.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// uniqueWallTimes returns the distinct naive values in ascending order.
func uniqueWallTimes(entries []metadata.Entry) []time.Time {
	seen := make(map[time.Time]bool)
	var values []time.Time
	for _, entry := range entries {
		wall := wallClock(entry.Time)
		if !seen[wall] {
			seen[wall] = true
			values = append(values, wall)
		}
	}
	sort.Slice(values, func(i, j int) bool { return values[i].Before(values[j]) })
	return values
}

// singleWallTime reports whether the values collapse to one reading within
// tolerance, returning the earliest as the representative.
func singleWallTime(values []time.Time, tolerance time.Duration) (time.Time, bool) {
	if len(values) == 0 {
		return time.Time{}, false
	}
	if values[len(values)-1].Sub(values[0]) <= tolerance {
		return values[0], true
	}
	return time.Time{}, false
}

// looksLikeZoneError reports whether a naive/local disagreement sits on a
// whole-hour boundary, which points at a zone error rather than a bad clock.
func looksLikeZoneError(diff, tolerance time.Duration) bool {
	d := absDuration(diff)
	if d < time.Hour-tolerance {
		return false
	}
	remainder := d % time.Hour
	return remainder <= tolerance || remainder >= time.Hour-tolerance
}

func dateCandidates(entries []metadata.Entry) []Candidate {
	candidates := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		candidates = append(candidates, Candidate{Value: entry.ValueString(), Source: entry.Source})
	}
	return candidates
}

func formatOffset(d time.Duration) string {
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, int(d.Hours()), int(d.Minutes())%60)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
