// Package main provides ordersyncctl, the CLI for the ordersync service.
//
// ordersync keeps storefront orders moving: any order still in "new" two
// hours after it was placed gets bumped to "in_progress" so fulfillment
// picks it up. Sweeps run on a schedule in server mode or on demand from
// the CLI, and every applied transition is recorded in PostgreSQL.
//
// # Architecture
//
// The service is organized into several packages:
//
//   - pkg/sweeper: the sweep engine (fetch, evaluate, update, record)
//   - pkg/brightsites: storefront orders API client
//   - pkg/server: HTTP status server and routing
//   - pkg/server/endpoints: status endpoint handlers
//   - pkg/store: storage interfaces (GORM implementation in pkg/store/gorm)
//   - pkg/model: database models
//   - pkg/db: database connection utilities
//   - pkg/config: configuration management
//   - pkg/logging: zerolog setup
//
// # Quick Start
//
//	# Run database migrations
//	ordersyncctl db migrate
//
//	# One-shot sweep across all configured stores
//	ordersyncctl sweep
//
//	# Start the scheduler and status server
//	ordersyncctl server
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - ORDERSYNC_STORES: store subdomains and API key variables
//   - ORDERSYNC_LOOKBACK_SECONDS: stale-order threshold (default 7200)
//   - ORDERSYNC_ADMIN_TOKEN_SECRET: secret for the manual sweep endpoint
//   - ORDERSYNC_LOG_LEVEL: log level (debug, info, warn, error)
//   - PORT: status server port (default: 8000)
//
// A .env file in the working directory is loaded automatically.
package main
