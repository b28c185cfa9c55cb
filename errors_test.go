package pgmodel_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/pgmodel"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		assert.Equal(t, "pgmodel: users row not found", pgmodel.NewNotFoundError("users", nil).Error())
		assert.Equal(t, "pgmodel: users row not found (id=7)", pgmodel.NewNotFoundError("users", 7).Error())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := pgmodel.NewNotFoundError("users", 7)
		assert.True(t, errors.Is(err, pgmodel.ErrNotFound))
		assert.True(t, pgmodel.IsNotFound(fmt.Errorf("wrapper: %w", err)))
		assert.True(t, pgmodel.IsNotFound(pgmodel.ErrNotFound))
		assert.False(t, pgmodel.IsNotFound(errors.New("other error")))
		assert.False(t, pgmodel.IsNotFound(nil))
		assert.Equal(t, "users", err.Table())
		assert.Equal(t, 7, err.ID())
	})
}

func TestConstraintError(t *testing.T) {
	cause := errors.New("duplicate key")
	err := pgmodel.NewConstraintError("duplicate key", cause)
	assert.Equal(t, "pgmodel: constraint failed: duplicate key", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, pgmodel.IsConstraintError(fmt.Errorf("wrap: %w", err)))
	assert.False(t, pgmodel.IsConstraintError(cause))
	assert.False(t, pgmodel.IsConstraintError(nil))
}

func TestExecError(t *testing.T) {
	cause := errors.New("relation does not exist")
	err := &pgmodel.ExecError{Table: "users", Op: "select", SQL: "SELECT * FROM users", Err: cause}
	assert.Equal(t, "pgmodel: select users: relation does not exist", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, pgmodel.IsExecError(err))
	assert.False(t, pgmodel.IsExecError(cause))
	assert.False(t, pgmodel.IsExecError(nil))
}

func TestAggregateError(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		assert.NoError(t, pgmodel.NewAggregateError(nil, nil))
	})

	t.Run("Single", func(t *testing.T) {
		err := errors.New("only")
		assert.Same(t, err, pgmodel.NewAggregateError(nil, err))
	})

	t.Run("Multiple", func(t *testing.T) {
		first, second := errors.New("first"), pgmodel.NewNotFoundError("users", 1)
		err := pgmodel.NewAggregateError(first, nil, second)
		var agg *pgmodel.AggregateError
		require.ErrorAs(t, err, &agg)
		assert.Len(t, agg.Errors, 2)
		assert.Equal(t, "pgmodel: multiple errors:\n  [1] first\n  [2] pgmodel: users row not found (id=1)", err.Error())
		assert.ErrorIs(t, err, first)
		assert.True(t, pgmodel.IsNotFound(err))
	})
}

func TestCodedErrors(t *testing.T) {
	tests := []struct {
		sentinel error
		code     pgmodel.Code
	}{
		{pgmodel.ErrInvalidPKType, pgmodel.CodeInvalidPKType},
		{pgmodel.ErrInvalidHookType, pgmodel.CodeInvalidHookType},
		{pgmodel.ErrUpdateValuesMismatch, pgmodel.CodeUpdateValuesMismatch},
		{pgmodel.ErrNotImplemented, pgmodel.CodeNotImplemented},
		{pgmodel.ErrNoClient, pgmodel.CodeNoClient},
		{pgmodel.ErrColumnNotFound, pgmodel.CodeColumnNotFound},
		{pgmodel.ErrNoTimestamps, pgmodel.CodeNoTimestamps},
		{pgmodel.ErrInvalidInput, pgmodel.CodeInvalidInput},
		{pgmodel.ErrInvalidParam, pgmodel.CodeInvalidParam},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := fmt.Errorf("wrap: %w", &pgmodel.Error{Code: tt.code, Message: "msg"})
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.code, pgmodel.CodeOf(err))
			assert.Equal(t, "wrap: "+string(tt.code)+": msg", err.Error())
		})
	}
}
