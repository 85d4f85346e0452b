package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func cardCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage credit cards",
	}

	cmd.AddCommand(cardAddCmd(a), cardListCmd(a))

	return cmd
}

func cardAddCmd(a *app) *cobra.Command {
	var closingDay, dueDay int

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a card with its closing and due days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			svc, _ := a.billing(db)

			card, err := svc.AddCard(cmd.Context(), args[0], closingDay, dueDay)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), card.ID)

			return nil
		},
	}

	cmd.Flags().IntVar(&closingDay, "closing-day", 0, "Day of month the statement closes (1-31)")
	cmd.Flags().IntVar(&dueDay, "due-day", 0, "Day of month the statement is due (1-31)")
	_ = cmd.MarkFlagRequired("closing-day")
	_ = cmd.MarkFlagRequired("due-day")

	return cmd
}

func cardListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			svc, _ := a.billing(db)

			cards, err := svc.Cards(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCLOSING\tDUE")

			for _, c := range cards {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", c.ID, c.Name, c.ClosingDay, c.DueDay)
			}

			return w.Flush()
		},
	}
}
