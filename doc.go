// Package pgmodel is a small object-relational mapping layer for
// PostgreSQL.
//
// A Table declares its columns as SQL fragments and renders
// create/read/update/delete and schema statements through the query
// package. A Model wraps a Table with an active-record style API and
// lifecycle hooks.
//
//	drv, err := sql.Open("postgres", dsn)
//	if err != nil {
//	    return err
//	}
//	users := pgmodel.New("users", &pgmodel.Config{
//	    Timestamps: pgmodel.Timestamps{Enabled: true},
//	}, pgmodel.WithDriver(drv))
//	err = users.Define(ctx,
//	    pgmodel.ColumnSpec{Name: "name", SQL: "@name text NOT NULL"},
//	    pgmodel.ColumnSpec{Name: "age", SQL: "@name integer"},
//	)
//	row, err := users.Create(ctx, pgmodel.Inputs{"name": "john", "age": 30})
//
// Statement failures are returned as *ExecError; library misuse as a
// coded *Error that errors.Is matches against the Err* sentinels.
package pgmodel
