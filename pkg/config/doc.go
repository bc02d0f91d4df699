// Package config provides configuration management for ordersync.
//
// This package handles loading and validating the sweeper and status server
// configuration from environment variables and an optional YAML file.
//
// # Configuration Sources
//
// Configuration is loaded from:
//
//   - Environment variables (primary)
//   - /etc/ordersync/config/ordersync.yml (optional, ORDERSYNC_CONFIG_PATH overrides the directory)
//
// # Key Configuration Options
//
//   - ORDERSYNC_STORES: Store subdomains and their API key variables
//   - ORDERSYNC_LOOKBACK_SECONDS: Stale-order threshold
//   - ORDERSYNC_SWEEP_INTERVAL_SECONDS: Scheduler period in server mode
//   - ORDERSYNC_ADMIN_TOKEN_SECRET: HMAC secret for the manual sweep endpoint
//   - DATABASE_URL: Database connection
//   - PORT: Status server listen port
//
// Store API keys are only ever read from the environment: the config file
// names the variable to read, never the key itself.
package config
