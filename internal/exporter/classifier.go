package exporter

import (
	"fmt"
	"path/filepath"
	"strings"

	"photomerge/internal/config"
	"photomerge/internal/identity"
	"photomerge/internal/merge"
	"photomerge/internal/mergerules"
	"photomerge/internal/metadata"
	"photomerge/internal/store"
)

// Decision is the classifier's output: a destination relative to the export
// root, or a review routing carrying the conflicts that forced it.
type Decision struct {
	RelPath   string
	Review    bool
	Conflicts []merge.Conflict
}

// Classifier turns one merged record plus its locations into a destination.
// It is pure: all state comes in through the arguments.
type Classifier struct {
	rules  mergerules.Rules
	export config.Export
}

// NewClassifier builds a classifier from the validated configuration.
func NewClassifier(rules mergerules.Rules, export config.Export) *Classifier {
	return &Classifier{rules: rules, export: export}
}

// Classify applies the priority chain: required-field conflicts force review
// before anything else, then manual override, messaging-app folders,
// screenshot folder, year folder, and finally review when no year can be
// derived.
func (c *Classifier) Classify(record merge.MergedRecord, kind identity.Kind, locations []store.Location) Decision {
	if conflicts := c.gatingConflicts(record); len(conflicts) > 0 {
		return Decision{RelPath: c.export.ReviewDirName, Review: true, Conflicts: conflicts}
	}

	for _, location := range locations {
		if location.ExportOverride != "" {
			return Decision{RelPath: location.ExportOverride}
		}
	}

	if c.matchesWhatsApp(locations) {
		if kind == identity.KindVideo {
			return Decision{RelPath: c.export.WhatsAppVideoDir}
		}
		return Decision{RelPath: c.export.WhatsAppImagesDir}
	}

	if c.matchesScreenshot(locations) {
		return Decision{RelPath: c.export.ScreenshotsDir}
	}

	if record.Date.Resolved {
		return Decision{RelPath: fmt.Sprintf("%04d", record.Date.Time.Year())}
	}

	// No date and no special-case match: guessing a year would scatter the
	// collection, so the operator decides.
	return Decision{RelPath: c.export.ReviewDirName, Review: true, Conflicts: record.Conflicts}
}

func (c *Classifier) gatingConflicts(record merge.MergedRecord) []merge.Conflict {
	var gating []merge.Conflict
	for _, conflict := range record.Conflicts {
		if c.rules.RequiresReview(conflict.Field) {
			gating = append(gating, conflict)
		}
		// GPS conflicts are recorded under latitude; a longitude
		// requirement gates on them too.
		if conflict.Field == metadata.FieldGPSLatitude && c.rules.RequiresReview(metadata.FieldGPSLongitude) {
			gating = append(gating, conflict)
		}
	}
	return gating
}

func (c *Classifier) matchesWhatsApp(locations []store.Location) bool {
	for _, location := range locations {
		if metadata.IsWhatsAppName(filepath.Base(location.Path)) {
			return true
		}
		if strings.Contains(strings.ToLower(location.Path), "whatsapp") {
			return true
		}
	}
	return false
}

func (c *Classifier) matchesScreenshot(locations []store.Location) bool {
	for _, location := range locations {
		if metadata.IsScreenshotName(filepath.Base(location.Path)) {
			return true
		}
		dir := strings.ToLower(filepath.Base(filepath.Dir(location.Path)))
		if dir == "screenshots" || dir == "screenshot" {
			return true
		}
	}
	return false
}
