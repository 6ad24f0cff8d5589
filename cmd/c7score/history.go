package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MaTriXy/c7score/internal/store"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <library>",
		Short: "Show stored scores of a library, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(a.cfg.Store.Path)
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.History(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("no stored reports for %q", args[0])
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tOVERALL")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%.2f / %g\n", e.ID, e.CreatedAt.Format(time.RFC3339), e.Overall, e.Scale)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of entries (0 for all)")
	return cmd
}
