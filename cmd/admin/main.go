package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dreamwise/dreamwise/cmd/admin/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "admin",
		Short:         "Operator tools for the DreamWise account store",
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.CleanupCmd())
	rootCmd.AddCommand(cmd.AccountCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
