package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/centricity/ordersync/pkg/brightsites"
	"github.com/centricity/ordersync/pkg/config"
)

// storesCheckCmd represents the stores check command
var storesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check connectivity to each configured storefront",
	Long: `Check connectivity to each configured storefront.

Each store's orders API is probed with a minimal request. A store passes
when the API responds successfully with its key.

Example:
  ordersyncctl stores check
  ordersyncctl stores check --store acme`,
	Run: func(cmd *cobra.Command, args []string) {
		subdomain, _ := cmd.Flags().GetString("store")

		if err := checkStores(cmd.Context(), subdomain); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	storesCmd.AddCommand(storesCheckCmd)
	storesCheckCmd.Flags().StringP("store", "s", "", "Check a single store by subdomain")
}

func checkStores(ctx context.Context, subdomain string) error {
	cfg := config.Get()

	stores := cfg.Stores
	if subdomain != "" {
		store, ok := cfg.StoreBySubdomain(subdomain)
		if !ok {
			return fmt.Errorf("store %q is not configured", subdomain)
		}
		stores = []config.Store{store}
	}

	if len(stores) == 0 {
		return fmt.Errorf("no stores configured")
	}

	failed := 0
	for _, store := range stores {
		key := store.APIKey()
		if key == "" {
			fmt.Printf("%s: FAIL (environment variable %s is not set)\n", store.Subdomain, store.APIKeyEnv)
			failed++
			continue
		}

		client := brightsites.NewClient(brightsites.Config{
			Subdomain: store.Subdomain,
			Domain:    cfg.APIDomain,
			Token:     key,
			Timeout:   cfg.HTTPTimeout(),
		})

		_, err := client.ListOrders(ctx, brightsites.ListOrdersParams{PerPage: 1})
		if err != nil {
			fmt.Printf("%s: FAIL (%v)\n", store.Subdomain, err)
			failed++
			continue
		}

		fmt.Printf("%s: OK\n", store.Subdomain)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d store(s) failed the check", failed, len(stores))
	}
	return nil
}
