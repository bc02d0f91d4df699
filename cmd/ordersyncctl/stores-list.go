package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/centricity/ordersync/pkg/config"
)

// storesListCmd represents the stores list command
var storesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured storefronts",
	Long: `List configured storefronts and whether an API key is present for each.

Key values are never printed; only the name of the environment variable
each store reads its key from, and whether that variable is set.

Example:
  ordersyncctl stores list`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Get()

		if len(cfg.Stores) == 0 {
			fmt.Println("No stores configured")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SUBDOMAIN\tKEY ENV\tKEY PRESENT")
		for _, store := range cfg.Stores {
			present := "no"
			if store.APIKey() != "" {
				present = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", store.Subdomain, store.APIKeyEnv, present)
		}
		_ = w.Flush()
	},
}

func init() {
	storesCmd.AddCommand(storesListCmd)
}
