// Package sql implements the dialect.Driver interface on top of database/sql.
//
// It is the only place in pgmodel that touches a real database handle:
//
//   - Driver: wraps *sql.DB and implements dialect.Driver
//   - ScanRecords: converts *sql.Rows into []map[string]any
//   - IsConstraintError and friends: classify driver errors
//   - StatsDriver / DebugDriver: statistics and logging wrappers
//
// Any registered database/sql driver can be used, e.g. lib/pq ("postgres")
// or pgx ("pgx"):
//
//	import _ "github.com/lib/pq"
//
//	drv, err := sql.Open("postgres", dsn)
//	if err != nil {
//	    return err
//	}
//	rows := &sql.Rows{}
//	if err := drv.Query(ctx, "SELECT id FROM users WHERE id = $1", []any{1}, rows); err != nil {
//	    return err
//	}
//	defer rows.Close()
//	records, err := sql.ScanRecords(rows)
package sql
