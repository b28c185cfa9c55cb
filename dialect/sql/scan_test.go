package sql

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/pgmodel/dialect"
)

func TestScanRecords(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.Postgres, db)

	t.Run("Records", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name, deleted_at FROM users").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "deleted_at"}).
				AddRow(int64(1), []byte("Alice"), nil).
				AddRow(int64(2), "Bob", nil))

		rows := &Rows{}
		require.NoError(t, drv.Query(context.Background(), "SELECT id, name, deleted_at FROM users", []any{}, rows))
		defer rows.Close()

		records, err := ScanRecords(rows)
		require.NoError(t, err)
		assert.Equal(t, []map[string]any{
			{"id": int64(1), "name": "Alice", "deleted_at": nil},
			{"id": int64(2), "name": "Bob", "deleted_at": nil},
		}, records)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty", func(t *testing.T) {
		mock.ExpectQuery("SELECT id FROM users").WillReturnRows(sqlmock.NewRows([]string{"id"}))

		rows := &Rows{}
		require.NoError(t, drv.Query(context.Background(), "SELECT id FROM users", []any{}, rows))
		defer rows.Close()

		records, err := ScanRecords(rows)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("RowError", func(t *testing.T) {
		cause := errors.New("connection reset")
		mock.ExpectQuery("SELECT id FROM users").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).RowError(0, cause))

		rows := &Rows{}
		require.NoError(t, drv.Query(context.Background(), "SELECT id FROM users", []any{}, rows))
		defer rows.Close()

		_, err := ScanRecords(rows)
		require.ErrorIs(t, err, cause)
	})
}
