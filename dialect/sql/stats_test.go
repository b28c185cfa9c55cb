package sql

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/pgmodel/dialect"
)

func TestStatsDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var slow []string
	drv := NewStatsDriver(OpenDB(dialect.Postgres, db),
		WithSlowThreshold(time.Hour),
		WithSlowQueryHook(func(_ context.Context, query string, _ []any, _ time.Duration) {
			slow = append(slow, query)
		}),
	)
	assert.Equal(t, time.Hour, drv.SlowThreshold())
	assert.Equal(t, dialect.Postgres, drv.Dialect())

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectExec("DROP TABLE x").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DROP TABLE y").WillReturnError(errors.New("missing"))

	rows := &Rows{}
	require.NoError(t, drv.Query(context.Background(), "SELECT 1", []any{}, rows))
	require.NoError(t, rows.Close())
	require.NoError(t, drv.Exec(context.Background(), "DROP TABLE x", []any{}, nil))
	require.Error(t, drv.Exec(context.Background(), "DROP TABLE y", []any{}, nil))
	require.NoError(t, mock.ExpectationsWereMet())

	snap := drv.QueryStats().Stats()
	assert.Equal(t, int64(1), snap.Queries)
	assert.Equal(t, int64(2), snap.Execs)
	assert.Equal(t, int64(3), snap.Total())
	assert.Equal(t, int64(1), snap.Failed)
	assert.Zero(t, snap.Slow)
	assert.Equal(t, map[string]int64{"SELECT": 1, "DROP": 2}, snap.ByVerb)
	assert.Empty(t, slow)
	assert.True(t, strings.HasPrefix(snap.String(), "queries=1 execs=2 failed=1"))
	assert.True(t, strings.HasSuffix(snap.String(), " drop=2 select=1"))

	drv.SetSlowThreshold(-1)
	mock.ExpectQuery("SELECT 2").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
	require.NoError(t, drv.Query(context.Background(), "SELECT 2", []any{}, rows))
	require.NoError(t, rows.Close())
	assert.Equal(t, []string{"SELECT 2"}, slow)
	assert.Equal(t, int64(1), drv.QueryStats().Stats().Slow)

	drv.QueryStats().Reset()
	assert.Equal(t, StatsSnapshot{}, drv.QueryStats().Stats())
	assert.Zero(t, StatsSnapshot{}.AvgQueryDuration())
}

func TestStatementVerb(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"SELECT id FROM users", "SELECT"},
		{"  insert INTO users DEFAULT VALUES", "INSERT"},
		{"VACUUM", "VACUUM"},
		{"", "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, statementVerb(tt.query))
		})
	}
}

func TestSlowQueryLog(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	drv := NewStatsDriver(OpenDB(dialect.Postgres, db), WithSlowThreshold(-1), WithSlowQueryLog(logger))

	mock.ExpectExec("VACUUM").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, drv.Exec(context.Background(), "VACUUM", []any{}, nil))
	assert.Contains(t, buf.String(), "pgmodel: slow statement")
	assert.Contains(t, buf.String(), "sql=VACUUM")
}

func TestDebugDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	drv := NewDebugDriver(OpenDB(dialect.Postgres, db), DebugWithLogger(logger))

	mock.ExpectExec("DELETE FROM users").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id FROM users").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	require.NoError(t, drv.Exec(context.Background(), "DELETE FROM users WHERE id=$1", []any{1}, nil))
	rows := &Rows{}
	require.NoError(t, drv.Query(context.Background(), "SELECT id FROM users", []any{}, rows))
	require.NoError(t, rows.Close())
	require.NoError(t, mock.ExpectationsWereMet())

	out := buf.String()
	assert.Contains(t, out, `msg="pgmodel: exec" sql="DELETE FROM users WHERE id=$1" args=[1]`)
	assert.Contains(t, out, `msg="pgmodel: query" sql="SELECT id FROM users"`)
}
