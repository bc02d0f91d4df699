// Package model defines the database models for ordersync.
//
// This package contains GORM models that map to the ordersync PostgreSQL
// schema. The schema records what the sweeper did, not the orders themselves;
// order data stays in the storefront platform.
//
// # Core Models
//
//   - SweepRun: one pass over the configured stores, with aggregate counts
//   - Transition: one order status update applied during a sweep run
package model
