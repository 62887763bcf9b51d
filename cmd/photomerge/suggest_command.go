package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newSuggestCommand(ctx *commandContext) *cobra.Command {
	var owner string
	var base string
	var pin bool

	cmd := &cobra.Command{
		Use:   "suggest <directory>",
		Short: "Record folder-derived export suggestions for imported files",
		Long: "Suggest records, for every imported file under the directory, its " +
			"folder path relative to --base as the suggested export destination. " +
			"A curated source tree thus survives the merge: with --pin the folder " +
			"becomes a hard override that wins over date-based classification.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(owner) == "" {
				return fmt.Errorf("--owner is required")
			}
			root, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve directory: %w", err)
			}
			baseDir := root
			if strings.TrimSpace(base) != "" {
				baseDir, err = filepath.Abs(base)
				if err != nil {
					return fmt.Errorf("resolve base: %w", err)
				}
			}

			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ownerRow, err := st.EnsureOwner(cmd.Context(), owner)
			if err != nil {
				return err
			}
			locations, err := st.LocationsUnder(cmd.Context(), ownerRow.ID, root+string(filepath.Separator))
			if err != nil {
				return err
			}

			updated := 0
			for _, location := range locations {
				rel, err := filepath.Rel(baseDir, filepath.Dir(location.Path))
				if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
					continue
				}
				if pin {
					err = st.SetExportOverride(cmd.Context(), location.ID, rel)
				} else {
					err = st.SetSuggestedExportPath(cmd.Context(), location.ID, rel)
				}
				if err != nil {
					return err
				}
				updated++
			}

			kind := "suggestions"
			if pin {
				kind = "overrides"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s for %d of %d files under %s\n",
				kind, updated, len(locations), root)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner whose files to annotate")
	cmd.Flags().StringVar(&base, "base", "", "Directory the suggestion paths are made relative to (default: the scanned directory)")
	cmd.Flags().BoolVar(&pin, "pin", false, "Write hard export overrides instead of suggestions")
	return cmd
}
