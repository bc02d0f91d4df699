package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/centricity/ordersync/pkg/config"
	"github.com/centricity/ordersync/pkg/db"
	"github.com/centricity/ordersync/pkg/model"
	"github.com/centricity/ordersync/pkg/store"
	gormstore "github.com/centricity/ordersync/pkg/store/gorm"
	"github.com/centricity/ordersync/pkg/sweeper"
)

// sweepCmd represents the sweep command
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one sweep across the configured stores",
	Long: `Run one sweep across the configured stores.

Fetches orders older than the lookback window from each store and moves
stale "new" orders to "in_progress". When DATABASE_URL is set, the run
and its transitions are recorded; without it the sweep still runs, it
just leaves no history.

Example:
  ordersyncctl sweep
  ordersyncctl sweep --store bonappetit
  ordersyncctl sweep --dry-run`,
	Run: func(cmd *cobra.Command, args []string) {
		subdomain, _ := cmd.Flags().GetString("store")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		if err := runSweep(subdomain, dryRun); err != nil {
			fmt.Fprintf(os.Stderr, "Sweep failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.Flags().StringP("store", "s", "", "Sweep only the named store subdomain")
	sweepCmd.Flags().Bool("dry-run", false, "Evaluate orders without updating anything")
}

func runSweep(subdomain string, dryRun bool) error {
	cfg := config.Get()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if len(cfg.Stores) == 0 {
		return fmt.Errorf("no stores configured")
	}

	if subdomain != "" {
		st, ok := cfg.StoreBySubdomain(subdomain)
		if !ok {
			return fmt.Errorf("store %q is not configured", subdomain)
		}
		cfg.Stores = []config.Store{st}
	}

	var transitions store.TransitionsStore
	var sweeps store.SweepsStore
	if db.URL() != "" {
		database, err := db.Connect(db.Config{})
		if err != nil {
			return err
		}
		transitions = gormstore.NewTransitionsStore(database)
		sweeps = gormstore.NewSweepsStore(database)
	} else {
		log.Warn().Msg("DATABASE_URL not set, sweep will not be recorded")
	}

	sw := sweeper.New(cfg, transitions, sweeps, sweeper.WithDryRun(dryRun))

	result, err := sw.SweepAll(context.Background(), model.TriggerCLI)
	if err != nil {
		return err
	}

	counts := result.Counts()
	fmt.Printf("Swept %d store(s): %d fetched, %d updated, %d skipped, %d failed\n",
		len(result.Stores), counts.Fetched, counts.Updated, counts.Skipped, counts.Failed)

	var storeErrs int
	for _, sr := range result.Stores {
		if sr.Err != nil {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", sr.Subdomain, sr.Err)
			storeErrs++
		}
	}
	if storeErrs > 0 {
		return fmt.Errorf("%d store(s) could not be swept", storeErrs)
	}
	return nil
}
