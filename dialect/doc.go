// Package dialect defines the client boundary used by pgmodel.
//
// Everything above this package only needs something that accepts a SQL
// string plus an ordered argument list. The ExecQuerier interface captures
// exactly that:
//
//	type ExecQuerier interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	}
//
// # Dialect
//
// Generated statements use PostgreSQL syntax: $n positional parameters and
// RETURNING clauses.
//
//	dialect.Postgres = "postgres"
//
// # Usage
//
// Opening a database connection:
//
//	import (
//	    "github.com/syssam/pgmodel/dialect"
//	    "github.com/syssam/pgmodel/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
//	users := pgmodel.New("users", nil, pgmodel.WithDriver(drv))
//
// # Sub-packages
//
//   - dialect/sql: database/sql driver, row scanning and error classification
package dialect
