package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newOwnersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "owners",
		Short: "List imported collections and their sizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			owners, err := st.ListOwners(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(owners))
			for _, summary := range owners {
				rows = append(rows, []string{
					summary.Owner.Name,
					strconv.FormatInt(summary.Locations, 10),
					strconv.FormatInt(summary.Identities, 10),
					summary.Owner.CreatedAt.Format("2006-01-02"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Owner", "Files", "Identities", "Imported"}, rows,
				alignLeft, alignRight, alignRight))
			return nil
		},
	}
}
