package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	_ = godotenv.Load()

	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "cyclectl",
		Short:         "Card billing cycles, reconciliation and background jobs",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}

	rootCmd.AddCommand(workerCmd(a))
	rootCmd.AddCommand(reconcileCmd(a))
	rootCmd.AddCommand(holidaysCmd())
	rootCmd.AddCommand(businessDayCmd())
	rootCmd.AddCommand(cardCmd(a))
	rootCmd.AddCommand(obligationCmd(a))
	rootCmd.AddCommand(importCmd(a))
	rootCmd.AddCommand(aliasCmd(a))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
