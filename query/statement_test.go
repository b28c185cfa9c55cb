package query_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/pgmodel/dialect"
	"github.com/syssam/pgmodel/dialect/sql"
	"github.com/syssam/pgmodel/query"
)

func TestStatementReturning(t *testing.T) {
	t.Parallel()
	b := query.NewBuilder("testTable", []string{"id", "name"})
	insert := b.Insert([]any{1, "john"})

	tests := []struct {
		name string
		cols []string
		sql  string
	}{
		{name: "Star", cols: []string{"*"}, sql: "INSERT INTO testTable (id,name) VALUES ($1,$2) RETURNING *"},
		{name: "CommaString", cols: []string{"id,name"}, sql: "INSERT INTO testTable (id,name) VALUES ($1,$2) RETURNING id,name"},
		{name: "List", cols: []string{"id", "name"}, sql: "INSERT INTO testTable (id,name) VALUES ($1,$2) RETURNING id,name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			st, err := insert.Returning(tt.cols...)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, st.SQL())
			assert.Equal(t, []any{1, "john"}, st.Args())
		})
	}

	_, err := insert.Returning()
	require.ErrorIs(t, err, query.ErrInvalidParam)
	_, err = insert.Returning("")
	require.ErrorIs(t, err, query.ErrInvalidParam)
	assert.Equal(t, "INSERT INTO testTable (id,name) VALUES ($1,$2) RETURNING *", insert.SQL())

	st, err := b.DropTable().Returning("id")
	require.NoError(t, err)
	assert.True(t, st.ReturnsRows())
}

func TestStatementClauses(t *testing.T) {
	t.Parallel()
	b := query.NewBuilder("users", []string{"id", "age"})
	st := b.Select(query.SelectOptions{Columns: []string{"age"}}).GroupBy("age").OrderBy("age")
	assert.Equal(t, "SELECT age FROM users GROUP BY age ORDER BY age", st.SQL())

	plain := b.Select(query.SelectOptions{})
	assert.Same(t, plain, plain.OrderBy())
}

func TestStatementLog(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	st := query.NewBuilder("users", []string{"id"}).Insert([]any{7})

	assert.Same(t, st, st.Log(context.Background(), logger))
	assert.Contains(t, buf.String(), "INSERT INTO users (id) VALUES ($1) RETURNING *")
	assert.Contains(t, buf.String(), "args=[7]")
}

func TestStatementRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("NoClient", func(t *testing.T) {
		t.Parallel()
		_, err := query.NewBuilder("users", nil).DropTable().Run(ctx, nil)
		require.ErrorIs(t, err, query.ErrNoClient)
		assert.Equal(t, query.CodeNoClient, query.CodeOf(err))
	})

	t.Run("Rows", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		drv := sql.OpenDB(dialect.Postgres, db)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (id,name) VALUES ($1,$2) RETURNING *")).
			WithArgs(1, "john").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), []byte("john")))

		records, err := query.NewBuilder("users", []string{"id", "name"}).Insert([]any{1, "john"}).Run(ctx, drv)
		require.NoError(t, err)
		assert.Equal(t, []map[string]any{{"id": int64(1), "name": "john"}}, records)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Exec", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		drv := sql.OpenDB(dialect.Postgres, db)

		mock.ExpectExec(regexp.QuoteMeta("DROP TABLE IF EXISTS users")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		records, err := query.NewBuilder("users", nil).DropTable().Run(ctx, drv)
		require.NoError(t, err)
		assert.Nil(t, records)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		drv := sql.OpenDB(dialect.Postgres, db)

		boom := errors.New("boom")
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).WillReturnError(boom)

		_, err = query.NewBuilder("users", nil).Count("", nil).Run(ctx, drv)
		require.ErrorIs(t, err, boom)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestErrorMatchesByCode(t *testing.T) {
	t.Parallel()
	err := query.NewError(query.CodeInvalidParam, "bad %s", "input")
	assert.EqualError(t, err, "INVALID_PARAM: bad input")
	assert.ErrorIs(t, err, query.ErrInvalidParam)
	assert.NotErrorIs(t, err, query.ErrNoClient)
	assert.Equal(t, query.Code(""), query.CodeOf(errors.New("plain")))
}
