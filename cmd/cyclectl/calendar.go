package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/cardcycle/internal/calendar"
)

func holidaysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "holidays [year]",
		Short: "List the national holidays of a year (default: current year)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year := time.Now().Year()

			if len(args) == 1 {
				y, err := strconv.Atoi(args[0])
				if err != nil || y < 1583 {
					return fmt.Errorf("invalid year %q", args[0])
				}

				year = y
			}

			out := cmd.OutOrStdout()
			for _, h := range calendar.HolidaysFor(year) {
				fmt.Fprintf(out, "%s  %-3s  %s\n", h.Date.Format(time.DateOnly), h.Date.Format("Mon"), h.Name)
			}

			return nil
		},
	}
}

func businessDayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "business-day <date>",
		Short: "Print the first business day on or after date (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := time.Parse(time.DateOnly, args[0])
			if err != nil {
				return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", args[0])
			}

			fmt.Fprintln(cmd.OutOrStdout(), calendar.NextBusinessDay(date).Format(time.DateOnly))

			return nil
		},
	}
}
