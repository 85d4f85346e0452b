package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func reconcileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Run one reconciliation pass and print what changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			_, reconciler := a.billing(db)

			res, err := reconciler.ReconcileOnce(cmd.Context())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "reassigned: %d\n", res.Reassigned)
			fmt.Fprintf(out, "corrected:  %d\n", res.Corrected)
			fmt.Fprintf(out, "removed:    %d\n", res.Removed)
			fmt.Fprintf(out, "skipped:    %d\n", res.Skipped)

			return err
		},
	}
}
