package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// storesCmd represents the stores command
var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "Manage configured storefronts",
	Long:  `Inspect the storefronts ordersync is configured to sweep.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'stores' requires a subcommand (list, check)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(storesCmd)
}
