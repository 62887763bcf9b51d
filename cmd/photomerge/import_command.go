package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"photomerge/internal/ingest"
	"photomerge/internal/logging"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "import <directory>",
		Short: "Import a directory of media into the catalog",
		Long: "Import walks a directory tree, fingerprints every photo and video, " +
			"links duplicates to existing identities, and records all metadata " +
			"assertions (EXIF, sidecars, filenames) for later merging.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(owner) == "" {
				return fmt.Errorf("--owner is required")
			}
			root, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve directory: %w", err)
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

			release, err := ctx.acquireLock()
			if err != nil {
				return err
			}
			defer release()

			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ing := ingest.New(ingest.Options{
				Store:                 st,
				Workers:               cfg.Ingest.Workers,
				VideoFrames:           cfg.Ingest.VideoFrames,
				VideoHammingThreshold: cfg.Tolerances.VideoHammingThreshold,
				FFmpeg:                cfg.FFmpegBinary(),
				FFprobe:               cfg.FFprobeBinary(),
				Logger:                logger,
			})
			summary, err := ing.Run(cmd.Context(), owner, root)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d new identities, linked %d duplicates, %d failures\n",
				summary.Imported, summary.Linked, summary.Failed)
			if summary.Failed > 0 {
				fmt.Fprintln(out, "Run `photomerge status --failures` to inspect failed files.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner name for the imported collection")
	return cmd
}
