// Package store provides storage abstractions for the ordersync server.
//
// This package defines interfaces for database operations, allowing the
// sweeper and the status endpoints to be decoupled from the specific database
// implementation. This enables easier testing with mocks.
//
// # Available Stores
//
//   - SweepsStore: sweep run lifecycle and history
//   - TransitionsStore: applied order transitions
//   - HealthStore: database connectivity checks
package store
