// Package exporter turns merged records into the consolidated output
// layout: year folders, messaging-app and screenshot folders, and a review
// folder for everything the merge could not settle.
package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"photomerge/internal/fileutil"
	"photomerge/internal/logging"
	"photomerge/internal/merge"
	"photomerge/internal/metadata"
	"photomerge/internal/services"
	"photomerge/internal/services/exiftool"
	"photomerge/internal/store"
)

// Summary reports what one export run did.
type Summary struct {
	Exported int
	Skipped  int
	Review   int
	Failed   int
}

// Exporter runs the export pipeline for one owner.
type Exporter struct {
	store      *store.Store
	engine     *merge.Engine
	classifier *Classifier

	exportDir string
	reviewDir string

	writeTags      bool
	overwrite      bool
	exiftoolBinary string
	logger         *slog.Logger
}

// Options carries the pieces the pipeline needs beyond the catalog itself.
type Options struct {
	Store      *store.Store
	Engine     *merge.Engine
	Classifier *Classifier
	ExportDir  string
	ReviewDir  string
	WriteTags  bool
	Overwrite  bool
	Exiftool   string
	Logger     *slog.Logger
}

// New assembles an exporter.
func New(opts Options) *Exporter {
	return &Exporter{
		store:          opts.Store,
		engine:         opts.Engine,
		classifier:     opts.Classifier,
		exportDir:      opts.ExportDir,
		reviewDir:      opts.ReviewDir,
		writeTags:      opts.WriteTags,
		overwrite:      opts.Overwrite,
		exiftoolBinary: opts.Exiftool,
		logger:         logging.WithComponent(opts.Logger, "export"),
	}
}

// Run exports every identity reachable from ownerName. Per-file failures are
// recorded and skipped; only storage failures abort the run.
func (e *Exporter) Run(ctx context.Context, ownerName string) (Summary, error) {
	owner, err := e.store.EnsureOwner(ctx, ownerName)
	if err != nil {
		return Summary{}, err
	}
	identities, err := e.store.IdentitiesForOwner(ctx, owner.ID)
	if err != nil {
		return Summary{}, err
	}
	e.logger.Info("export started", logging.FieldOwner, ownerName, "identities", len(identities))

	entriesByIdentity := make(map[int64][]metadata.Entry, len(identities))
	for _, ident := range identities {
		entries, err := e.store.EntriesForIdentity(ctx, ident.ID)
		if err != nil {
			return Summary{}, err
		}
		entriesByIdentity[ident.ID] = entries
	}
	index := BuildSequenceIndex(entriesByIdentity)

	var summary Summary
	var conflictLog []string
	for _, ident := range identities {
		record := e.engine.Merge(ident.Key.String(), entriesByIdentity[ident.ID], index)
		locations, err := e.store.LocationsForIdentity(ctx, ident.ID)
		if err != nil {
			return Summary{}, err
		}
		source, ok := pickSource(locations, owner.ID)
		if !ok {
			continue
		}

		decision := e.classifier.Classify(record, ident.Key.Kind, locations)
		if decision.Review {
			summary.Review++
			conflictLog = append(conflictLog, formatConflicts(source.Path, decision.Conflicts)...)
		}

		outcome, err := e.place(ctx, source.Path, record, decision)
		if err != nil {
			if services.Fatal(err) {
				return summary, err
			}
			summary.Failed++
			e.logger.Warn("export failed", logging.FieldPath, source.Path, logging.Error(err))
			if recordErr := e.store.RecordFailure(ctx, source.Path, "export", err.Error()); recordErr != nil {
				return summary, recordErr
			}
			continue
		}
		switch outcome {
		case outcomeCopied:
			if !decision.Review {
				summary.Exported++
			}
		case outcomeSkipped:
			summary.Skipped++
		}
	}

	if len(conflictLog) > 0 {
		if err := e.writeConflictLog(conflictLog); err != nil {
			e.logger.Warn("conflict log not written", logging.Error(err))
		}
	}

	e.logger.Info("export finished",
		"exported", summary.Exported,
		"skipped", summary.Skipped,
		"review", summary.Review,
		"failed", summary.Failed)
	return summary, nil
}

type placeOutcome int

const (
	outcomeCopied placeOutcome = iota
	outcomeSkipped
)

func (e *Exporter) place(ctx context.Context, sourcePath string, record merge.MergedRecord, decision Decision) (placeOutcome, error) {
	root := e.exportDir
	if decision.Review {
		root = e.reviewDir
	}
	destDir := filepath.Join(root, decision.RelPath)
	if decision.Review {
		destDir = root
	}
	destPath := filepath.Join(destDir, filepath.Base(sourcePath))

	if fileutil.Exists(destPath) && !e.overwrite {
		return outcomeSkipped, nil
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, services.Wrap(services.ErrPersistence, "export", "mkdir", destDir, err)
	}
	if err := fileutil.CopyFileVerified(sourcePath, destPath); err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "export", "copy", sourcePath, err)
	}

	if e.writeTags && !decision.Review {
		if err := e.writeBack(ctx, destPath, record); err != nil {
			return 0, err
		}
	}
	return outcomeCopied, nil
}

// writeBack materializes the merged record onto the exported copy.
func (e *Exporter) writeBack(ctx context.Context, path string, record merge.MergedRecord) error {
	var tags []exiftool.Tag
	if record.Date.Resolved {
		tags = append(tags, exiftool.DateTags(record.Date.Time, record.Date.Aware)...)
	}
	if record.GPS.Resolved {
		tags = append(tags, exiftool.GPSTags(record.GPS.Latitude, record.GPS.Longitude)...)
	}
	if v := record.Fields[metadata.FieldTitle]; v != "" {
		tags = append(tags, exiftool.Tag{Name: "Title", Value: v})
	}
	if v := record.Fields[metadata.FieldDescription]; v != "" {
		tags = append(tags, exiftool.Tag{Name: "Description", Value: v})
	}
	if v := record.Fields[metadata.FieldCameraMake]; v != "" {
		tags = append(tags, exiftool.Tag{Name: "Make", Value: v})
	}
	if v := record.Fields[metadata.FieldCameraModel]; v != "" {
		tags = append(tags, exiftool.Tag{Name: "Model", Value: v})
	}
	if len(tags) == 0 {
		return nil
	}
	return exiftool.Write(ctx, e.exiftoolBinary, path, tags)
}

func (e *Exporter) writeConflictLog(lines []string) error {
	if err := os.MkdirAll(e.reviewDir, 0o755); err != nil {
		return err
	}
	logPath := filepath.Join(e.reviewDir, "conflicts.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(strings.Join(lines, "\n") + "\n")
	return err
}

// pickSource chooses which on-disk copy to export: the owner's own copy
// when one exists, otherwise any linked copy.
func pickSource(locations []store.Location, ownerID int64) (store.Location, bool) {
	for _, location := range locations {
		if location.OwnerID == ownerID && fileutil.Exists(location.Path) {
			return location, true
		}
	}
	for _, location := range locations {
		if fileutil.Exists(location.Path) {
			return location, true
		}
	}
	return store.Location{}, false
}

// BuildSequenceIndex collects every messaging-app sequence assertion across
// the loaded identities so the merge engine can cross-check them.
func BuildSequenceIndex(entriesByIdentity map[int64][]metadata.Entry) merge.SequenceIndex {
	index := make(merge.SequenceIndex)
	for _, entries := range entriesByIdentity {
		var seqID string
		var asserted *metadata.Entry
		for i, entry := range entries {
			switch {
			case entry.Field == metadata.FieldWhatsAppSequence:
				seqID = entry.Text
			case entry.Field == metadata.FieldDateTaken && entry.Source == metadata.SourceWhatsApp:
				asserted = &entries[i]
			}
		}
		if seqID != "" && asserted != nil {
			index[seqID] = append(index[seqID], asserted.Time)
		}
	}
	return index
}

func formatConflicts(path string, conflicts []merge.Conflict) []string {
	if len(conflicts) == 0 {
		return []string{fmt.Sprintf("%s: no resolvable date-taken", path)}
	}
	lines := make([]string, 0, len(conflicts))
	for _, conflict := range conflicts {
		parts := make([]string, 0, len(conflict.Candidates))
		for _, candidate := range conflict.Candidates {
			parts = append(parts, fmt.Sprintf("%s=%s", candidate.Source, candidate.Value))
		}
		lines = append(lines, fmt.Sprintf("%s: field %s: %s [%s]",
			path, conflict.Field, strings.Join(parts, ", "), conflict.Reason))
	}
	return lines
}
