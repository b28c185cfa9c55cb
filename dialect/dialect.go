package dialect

import "context"

// Postgres is the only dialect pgmodel renders statements for.
const Postgres = "postgres"

// ExecQuerier wraps the two database operations used by pgmodel.
//
// Exec runs a statement that does not return rows. Query runs a statement
// that does and stores them in v, which is driver specific (for
// dialect/sql it is a *sql.Rows).
type ExecQuerier interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations for a
// database connection.
type Driver interface {
	ExecQuerier
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}
