package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"photomerge/internal/merge"
	"photomerge/internal/metadata"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var owner string
	var jsonOut bool
	var conflictsOnly bool

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Preview merged records for an owner without exporting",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(owner) == "" {
				return fmt.Errorf("--owner is required")
			}
			engine, err := ctx.newEngine(nil)
			if err != nil {
				return err
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := loadMergedRecords(cmd.Context(), st, engine, owner)
			if err != nil {
				return err
			}

			if jsonOut {
				payload := make([]mergeView, 0, len(records))
				for _, rec := range records {
					if conflictsOnly && len(rec.record.Conflicts) == 0 {
						continue
					}
					payload = append(payload, newMergeView(rec))
				}
				return writeJSON(cmd, payload)
			}

			rows := make([][]string, 0, len(records))
			conflicted := 0
			for _, rec := range records {
				if len(rec.record.Conflicts) > 0 {
					conflicted++
				} else if conflictsOnly {
					continue
				}
				rows = append(rows, []string{
					shortDigest(rec.identity.Key.Digest),
					string(rec.identity.Key.Kind),
					formatResolvedDate(rec.record.Date),
					formatGPS(rec.record.GPS),
					rec.record.Fields[metadata.FieldTitle],
					formatConflictReasons(rec.record),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Identity", "Kind", "Date", "GPS", "Title", "Conflicts"},
				rows,
			))
			fmt.Fprintf(out, "%d identities, %d with conflicts\n", len(records), conflicted)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner whose identities to merge")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit merged records as JSON")
	cmd.Flags().BoolVar(&conflictsOnly, "conflicts", false, "Show only identities with conflicts")
	return cmd
}

func formatGPS(gps merge.ResolvedGPS) string {
	if !gps.Resolved {
		return "-"
	}
	return fmt.Sprintf("%.6f,%.6f (%s)", gps.Latitude, gps.Longitude, gps.Confidence)
}

// mergeView is the JSON shape for one merged record.
type mergeView struct {
	Identity   string            `json:"identity"`
	Kind       string            `json:"kind"`
	Date       string            `json:"date,omitempty"`
	Confidence string            `json:"confidence,omitempty"`
	Latitude   float64           `json:"latitude,omitempty"`
	Longitude  float64           `json:"longitude,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	Conflicts  []conflictView    `json:"conflicts,omitempty"`
	Paths      []string          `json:"paths"`
}

type conflictView struct {
	Field      string   `json:"field"`
	Reason     string   `json:"reason"`
	Candidates []string `json:"candidates"`
}

func newMergeView(rec mergedIdentity) mergeView {
	view := mergeView{
		Identity: rec.identity.Key.String(),
		Kind:     string(rec.identity.Key.Kind),
	}
	if rec.record.Date.Resolved {
		view.Date = formatResolvedDate(rec.record.Date)
		view.Confidence = string(rec.record.Date.Confidence)
	}
	if rec.record.GPS.Resolved {
		view.Latitude = rec.record.GPS.Latitude
		view.Longitude = rec.record.GPS.Longitude
	}
	if len(rec.record.Fields) > 0 {
		view.Fields = make(map[string]string, len(rec.record.Fields))
		for field, value := range rec.record.Fields {
			view.Fields[string(field)] = value
		}
	}
	for _, conflict := range rec.record.Conflicts {
		cv := conflictView{
			Field:  string(conflict.Field),
			Reason: string(conflict.Reason),
		}
		for _, cand := range conflict.Candidates {
			cv.Candidates = append(cv.Candidates, fmt.Sprintf("%s=%s", cand.Source, cand.Value))
		}
		view.Conflicts = append(view.Conflicts, cv)
	}
	for _, loc := range rec.locations {
		view.Paths = append(view.Paths, loc.Path)
	}
	return view
}
