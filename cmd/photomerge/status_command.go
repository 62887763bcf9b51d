package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"photomerge/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var showFailures bool
	var failureLimit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show catalog statistics and recent failures",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.Summarize(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Identities", strconv.FormatInt(stats.Identities, 10)},
				{"Owners", strconv.FormatInt(stats.Owners, 10)},
				{"Locations", strconv.FormatInt(stats.Locations, 10)},
				{"Metadata entries", strconv.FormatInt(stats.Entries, 10)},
				{"Failures", strconv.FormatInt(stats.Failures, 10)},
			}
			if stdoutIsTerminal() {
				fmt.Fprintln(out, renderTable(
					[]string{"Metric", "Count"}, rows,
					alignLeft, alignRight))
			} else {
				for _, row := range rows {
					fmt.Fprintf(out, "%s: %s\n", row[0], row[1])
				}
			}

			if !showFailures || stats.Failures == 0 {
				return nil
			}
			failures, err := st.ListFailures(cmd.Context(), failureLimit)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderFailures(failures))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showFailures, "failures", false, "List recent per-file failures")
	cmd.Flags().IntVar(&failureLimit, "failure-limit", 20, "Maximum failures to list (0 for all)")
	return cmd
}

func renderFailures(failures []store.Failure) string {
	rows := make([][]string, 0, len(failures))
	for _, failure := range failures {
		rows = append(rows, []string{
			failure.CreatedAt.Format("2006-01-02 15:04"),
			failure.Stage,
			failure.Path,
			failure.Message,
		})
	}
	return renderTable(
		[]string{"When", "Stage", "Path", "Error"}, rows)
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
