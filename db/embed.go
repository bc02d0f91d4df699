// Package db holds the embedded SQL migrations for ordersync.
package db

import "embed"

// Migrations contains the SQL migration files.
//
//go:embed migrations/*.sql
var Migrations embed.FS
