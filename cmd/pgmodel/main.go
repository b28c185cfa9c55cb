// Package main provides the pgmodel CLI. It reads table declarations from
// a YAML schema file and applies them to a PostgreSQL database.
//
// Usage:
//
//	pgmodel validate -s schema.yaml    # Check the schema file
//	pgmodel define   -s schema.yaml    # Create missing tables, alter existing ones
//	pgmodel create   -s schema.yaml    # CREATE TABLE IF NOT EXISTS
//	pgmodel alter    -s schema.yaml    # Add missing columns (tables with alter: true)
//	pgmodel exists   -s schema.yaml    # Report which tables exist
//	pgmodel count    -s schema.yaml    # Count rows per table
//	pgmodel drop     -s schema.yaml    # DROP TABLE IF EXISTS
package main

import (
	"fmt"
	"os"

	// Database drivers
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// version is set via ldflags during build: -ldflags="-X main.version=v1.0.0"
var version = "dev"

func main() {
	if err := newRootCmd(newApp(os.Stdout, os.Stderr)).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
