package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/centricity/ordersync/pkg/config"
	"github.com/centricity/ordersync/pkg/db"
	"github.com/centricity/ordersync/pkg/server"
	"github.com/centricity/ordersync/pkg/server/endpoints"
	gormstore "github.com/centricity/ordersync/pkg/store/gorm"
	"github.com/centricity/ordersync/pkg/sweeper"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the ordersync scheduler and status server",
	Long: `Run the ordersync scheduler and status server.

Sweeps run on the configured interval; the status server exposes sweep
history and health. Requires the DATABASE_URL environment variable.

By default, database migrations are run on startup. Use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Validate required environment variables first (fail fast)
		if os.Getenv("DATABASE_URL") == "" {
			fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable is required")
			os.Exit(1)
		}

		cfg := config.Get()
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}
		if len(cfg.Stores) == 0 {
			log.Warn().Msg("No stores configured; sweeps will do nothing")
		}

		// Run migrations unless --no-migrate is set
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			log.Info().Msg("Running database migrations")
			if err := runMigrations(); err != nil {
				fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
				os.Exit(1)
			}
		}

		database, err := db.Connect(db.Config{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to connect to DB: %v\n", err)
			os.Exit(1)
		}

		sweeps := gormstore.NewSweepsStore(database)
		transitions := gormstore.NewTransitionsStore(database)
		health := gormstore.NewHealthStore(database)

		sw := sweeper.New(cfg, transitions, sweeps)

		host, _ := cmd.Flags().GetString("bind-address")
		if host == "" {
			host = cfg.BindAddress
		}
		port, _ := cmd.Flags().GetString("port")
		if port == "" {
			port = strconv.Itoa(cfg.Port)
		}

		srv := server.NewServer(cfg, database, sw, sweeps, transitions, health, host, port)
		endpoints.RegisterAll(srv)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		noScheduler, _ := cmd.Flags().GetBool("no-scheduler")
		if !noScheduler {
			go func() {
				if err := sw.RunEvery(ctx, cfg.SweepInterval()); err != nil && ctx.Err() == nil {
					log.Error().Err(err).Msg("Scheduler stopped")
				}
			}()
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		log.Info().Str("addr", host+":"+port).Msg("Starting status server")
		if err := srv.Start(); err != nil {
			log.Info().Err(err).Msg("Server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().StringP("bind-address", "b", "", "Address to bind to (default from config)")
	serverCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serverCmd.Flags().Bool("no-migrate", false, "Skip database migrations on startup")
	serverCmd.Flags().Bool("no-scheduler", false, "Serve status endpoints without scheduling sweeps")
}
