package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/cardcycle/internal/importer"
	"github.com/MrJamesThe3rd/cardcycle/internal/logger"
	"github.com/MrJamesThe3rd/cardcycle/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/cardcycle/internal/matching/store"
	"github.com/MrJamesThe3rd/cardcycle/internal/money"
)

func importCmd(a *app) *cobra.Command {
	var cardFlag string

	cmd := &cobra.Command{
		Use:   "import <statement.csv>",
		Short: "Record the charges of a card statement export as purchases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID, err := uuid.Parse(cardFlag)
			if err != nil {
				return fmt.Errorf("invalid --card: %w", err)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			db, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			svc, _ := a.billing(db)
			aliases := matching.NewService(matchingStore.New(db))
			imp := importer.NewService(svc, aliases, logger.WithComponent(a.log, "importer"))

			res, err := imp.Import(cmd.Context(), cardID, f)

			out := cmd.OutOrStdout()
			for _, p := range res.Purchases {
				fmt.Fprintf(out, "%s  %-30s  %14s  %dx\n", p.Date.Format("2006-01-02"), p.Description, money.Format(p.Amount), p.Installments)
			}

			fmt.Fprintf(out, "imported %d, skipped %d continuation(s) and %d credit(s)\n",
				res.Imported, res.Continuations, res.Credits)

			return err
		},
	}

	cmd.Flags().StringVar(&cardFlag, "card", "", "Card ID the statement belongs to")
	_ = cmd.MarkFlagRequired("card")

	return cmd
}

func aliasCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage description aliases applied on import",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "add <pattern> <description>",
		Short:   "Rename imported lines containing pattern",
		Example: `  cyclectl alias add "MERCADOLIVRE" "Mercado Livre"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			return matching.NewService(matchingStore.New(db)).Learn(cmd.Context(), args[0], args[1])
		},
	})

	return cmd
}
