package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/centricity/ordersync/pkg/config"
	"github.com/centricity/ordersync/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "ordersyncctl",
	Short: "Manage the ordersync order status sweeper",
	Long: `ordersyncctl manages the ordersync service, which finds stale "new"
orders across the configured storefronts and moves them to "in_progress".`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		// Values in a .env file fill in for missing environment variables;
		// real environment always wins.
		_ = godotenv.Load()

		logCloser, err = logging.Setup(logging.Options{
			Level: os.Getenv("ORDERSYNC_LOG_LEVEL"),
			JSON:  os.Getenv("ORDERSYNC_LOG_JSON") == "true" || os.Getenv("ORDERSYNC_LOG_JSON") == "1",
			File:  config.Get().LogFile,
		})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser()
		}
	},
}

var logCloser func()

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
