package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/syssam/pgmodel"
	"github.com/syssam/pgmodel/dialect"
	"github.com/syssam/pgmodel/dialect/sql"
	"github.com/syssam/pgmodel/schema"
)

// app holds the global flags and the collaborators commands share.
type app struct {
	dsn        string
	driver     string
	schemaPath string
	debug      bool
	stats      bool

	out    io.Writer
	errOut io.Writer
	open   func(driverName, dsn string) (dialect.Driver, error)
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		out:    out,
		errOut: errOut,
		open: func(driverName, dsn string) (dialect.Driver, error) {
			return sql.Open(driverName, dsn)
		},
	}
}

func (a *app) logger() *slog.Logger {
	level := slog.LevelInfo
	if a.debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
}

// loadSchema reads the schema file and refuses to continue when it has
// validation errors.
func (a *app) loadSchema() ([]*schema.Table, error) {
	if a.schemaPath == "" {
		return nil, errors.New("no schema file given (use --schema)")
	}
	tables, err := schema.Load(a.schemaPath)
	if err != nil {
		return nil, err
	}
	result := schema.ValidateSchema(tables)
	if result.HasErrors() {
		return nil, fmt.Errorf("invalid schema:\n%s", result)
	}
	if result.HasWarnings() {
		fmt.Fprintln(a.errOut, result)
	}
	return tables, nil
}

// session is an open connection with the models of every declared table.
type session struct {
	tables []*schema.Table
	models []*pgmodel.Model
	drv    dialect.Driver
	stats  *sql.StatsDriver
	logger *slog.Logger
}

func (a *app) connect() (*session, error) {
	tables, err := a.loadSchema()
	if err != nil {
		return nil, err
	}
	dsn := a.dsn
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		return nil, errors.New("no database given (use --dsn or DATABASE_URL)")
	}
	drv, err := a.open(a.driver, dsn)
	if err != nil {
		return nil, err
	}
	s := &session{tables: tables, logger: a.logger()}
	if a.debug {
		drv = sql.NewDebugDriver(drv, sql.DebugWithLogger(s.logger))
	}
	if a.stats {
		s.stats = sql.NewStatsDriver(drv, sql.WithSlowQueryLog(s.logger))
		drv = s.stats
	}
	s.drv = drv
	for _, t := range tables {
		s.models = append(s.models, t.Model(pgmodel.WithDriver(drv), pgmodel.WithLogger(s.logger)))
	}
	return s, nil
}

func (s *session) close(out io.Writer) error {
	if s.stats != nil {
		fmt.Fprintln(out, s.stats.QueryStats().Stats())
	}
	return s.drv.Close()
}

// withSession runs fn on a fresh session and always closes it.
func (a *app) withSession(fn func(*session) error) (err error) {
	s, err := a.connect()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(a.errOut); err == nil {
			err = cerr
		}
	}()
	return fn(s)
}
