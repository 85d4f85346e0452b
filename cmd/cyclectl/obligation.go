package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/cardcycle/internal/obligation"
	obligationStore "github.com/MrJamesThe3rd/cardcycle/internal/obligation/store"
)

func obligationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "obligation",
		Short: "Manage recurring bills that get reminders",
	}

	cmd.AddCommand(obligationAddCmd(a))

	return cmd
}

func obligationAddCmd(a *app) *cobra.Command {
	var (
		amount       string
		due          string
		preferredDay int
		once         bool
	)

	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Register an obligation due on a date, repeating monthly unless --once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil || !value.IsPositive() {
				return fmt.Errorf("invalid amount %q", amount)
			}

			dueDate, err := time.Parse(time.DateOnly, due)
			if err != nil {
				return fmt.Errorf("invalid due date %q, expected YYYY-MM-DD", due)
			}

			if preferredDay < 0 || preferredDay > 31 {
				return fmt.Errorf("invalid preferred day %d", preferredDay)
			}

			if preferredDay == 0 {
				preferredDay = dueDate.Day()
			}

			db, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			o := &obligation.Obligation{
				Description:  args[0],
				Amount:       value,
				DueDate:      dueDate,
				Recurring:    !once,
				PreferredDay: preferredDay,
				Active:       true,
			}

			if err := obligationStore.New(db).Create(cmd.Context(), o); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), o.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Amount, e.g. 1500.00")
	cmd.Flags().StringVar(&due, "due", "", "First due date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&preferredDay, "day", 0, "Preferred day of month; 0 keeps the due date's day")
	cmd.Flags().BoolVar(&once, "once", false, "Remind once instead of monthly")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("due")

	return cmd
}
