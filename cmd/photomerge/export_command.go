package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"photomerge/internal/exporter"
	"photomerge/internal/logging"
	"photomerge/internal/merge"
	"photomerge/internal/mergerules"
	"photomerge/internal/store"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var owner string
	var dryRun bool
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an owner's collection into the organized layout",
		Long: "Export merges every identity reachable from the owner, classifies " +
			"it into the year/messaging/screenshot layout, and copies one source " +
			"file per identity. Identities with unresolvable conflicts go to the " +
			"review directory instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(owner) == "" {
				return fmt.Errorf("--owner is required")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			logger = logger.With(logging.String(logging.FieldRunID, uuid.NewString()))

			engine, err := ctx.newEngine(logger)
			if err != nil {
				return err
			}
			classifier := exporter.NewClassifier(mergerules.FromConfig(cfg), cfg.Export)

			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if dryRun {
				return runExportPreview(cmd, st, engine, classifier, owner)
			}

			release, err := ctx.acquireLock()
			if err != nil {
				return err
			}
			defer release()

			exp := exporter.New(exporter.Options{
				Store:      st,
				Engine:     engine,
				Classifier: classifier,
				ExportDir:  cfg.Paths.ExportDir,
				ReviewDir:  cfg.Paths.ReviewDir,
				WriteTags:  cfg.Export.WriteTags,
				Overwrite:  overwrite || cfg.Export.OverwriteExisting,
				Exiftool:   cfg.ExiftoolBinary(),
				Logger:     logger,
			})
			summary, err := exp.Run(cmd.Context(), owner)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Exported %d, skipped %d existing, %d sent to review, %d failures\n",
				summary.Exported, summary.Skipped, summary.Review, summary.Failed)
			if summary.Review > 0 {
				fmt.Fprintf(out, "Review queue: %s (see conflicts.log there)\n", cfg.Paths.ReviewDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner whose collection to export")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Classify without copying any files")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace files already present at the destination")
	return cmd
}

func runExportPreview(cmd *cobra.Command, st *store.Store, engine *merge.Engine, classifier *exporter.Classifier, owner string) error {
	records, err := loadMergedRecords(cmd.Context(), st, engine, owner)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		decision := classifier.Classify(rec.record, rec.identity.Key.Kind, rec.locations)
		destination := decision.RelPath
		if decision.Review {
			destination = "review"
		} else if len(rec.locations) > 0 {
			destination = filepath.Join(decision.RelPath, filepath.Base(rec.locations[0].Path))
		}
		rows = append(rows, []string{
			shortDigest(rec.identity.Key.Digest),
			string(rec.identity.Key.Kind),
			formatResolvedDate(rec.record.Date),
			destination,
			formatConflictReasons(rec.record),
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Identity", "Kind", "Date", "Destination", "Conflicts"},
		rows,
	))
	fmt.Fprintf(out, "%d identities (no files copied)\n", len(rows))
	return nil
}
