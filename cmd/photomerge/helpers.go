package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"photomerge/internal/exporter"
	"photomerge/internal/merge"
	"photomerge/internal/metadata"
	"photomerge/internal/store"
)

// mergedIdentity pairs one identity with its merged record and file
// locations, ready for display or classification.
type mergedIdentity struct {
	identity  store.Identity
	locations []store.Location
	record    merge.MergedRecord
}

// loadMergedRecords runs the merge engine over every identity reachable from
// ownerName without touching the filesystem.
func loadMergedRecords(ctx context.Context, st *store.Store, engine *merge.Engine, ownerName string) ([]mergedIdentity, error) {
	owner, err := st.EnsureOwner(ctx, ownerName)
	if err != nil {
		return nil, err
	}
	identities, err := st.IdentitiesForOwner(ctx, owner.ID)
	if err != nil {
		return nil, err
	}

	entriesByIdentity := make(map[int64][]metadata.Entry, len(identities))
	for _, ident := range identities {
		entries, err := st.EntriesForIdentity(ctx, ident.ID)
		if err != nil {
			return nil, err
		}
		entriesByIdentity[ident.ID] = entries
	}
	index := exporter.BuildSequenceIndex(entriesByIdentity)

	merged := make([]mergedIdentity, 0, len(identities))
	for _, ident := range identities {
		locations, err := st.LocationsForIdentity(ctx, ident.ID)
		if err != nil {
			return nil, err
		}
		merged = append(merged, mergedIdentity{
			identity:  ident,
			locations: locations,
			record:    engine.Merge(ident.Key.String(), entriesByIdentity[ident.ID], index),
		})
	}
	return merged, nil
}

func shortDigest(digest string) string {
	if len(digest) <= 12 {
		return digest
	}
	return digest[:12]
}

func formatResolvedDate(date merge.ResolvedDate) string {
	if !date.Resolved {
		return "-"
	}
	if date.Aware {
		return fmt.Sprintf("%s (%s)", date.Time.Format(time.RFC3339), date.Confidence)
	}
	return fmt.Sprintf("%s naive (%s)", date.Time.Format("2006-01-02 15:04:05"), date.Confidence)
}

func formatConflictReasons(record merge.MergedRecord) string {
	if len(record.Conflicts) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(record.Conflicts))
	for _, conflict := range record.Conflicts {
		parts = append(parts, fmt.Sprintf("%s: %s", conflict.Field, conflict.Reason))
	}
	return strings.Join(parts, "; ")
}
