package pgmodel

import (
	"context"
	"maps"
	"reflect"

	"github.com/google/uuid"

	"github.com/syssam/pgmodel/dialect"
	"github.com/syssam/pgmodel/query"
)

// Model is an active-record style wrapper around a Table with lifecycle
// hooks.
type Model struct {
	table *Table
	hooks Hooks
}

// New returns a model for tableName without columns; call Define to
// declare them.
func New(tableName string, cfg *Config, opts ...Option) *Model {
	return &Model{table: NewTable(tableName, nil, cfg, opts...)}
}

// Table returns the underlying table.
func (m *Model) Table() *Table { return m.table }

// TableName returns the table name, prefix included.
func (m *Model) TableName() string { return m.table.Name() }

// UseDriver sets the client the model runs statements on.
func (m *Model) UseDriver(drv dialect.ExecQuerier) { m.table.UseDriver(drv) }

// Define sets the model columns, then alters the table if it exists or
// creates it otherwise.
func (m *Model) Define(ctx context.Context, specs ...ColumnSpec) error {
	m.table.SetColumns(specs...)
	exists, err := m.table.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		_, err = m.table.Alter(ctx)
		return err
	}
	return m.table.Create(ctx)
}

// BeforeCreate sets the hook run before Create and CreateMany.
func (m *Model) BeforeCreate(fn Hook) { m.hooks.BeforeCreate = fn }

// AfterCreate sets the hook run after Create and CreateMany.
func (m *Model) AfterCreate(fn Hook) { m.hooks.AfterCreate = fn }

// BeforeUpdate sets the hook run before the update and patch methods.
func (m *Model) BeforeUpdate(fn Hook) { m.hooks.BeforeUpdate = fn }

// AfterUpdate sets the hook run after the update and patch methods.
func (m *Model) AfterUpdate(fn Hook) { m.hooks.AfterUpdate = fn }

// BeforeDestroy sets the hook run before the destroy methods.
func (m *Model) BeforeDestroy(fn Hook) { m.hooks.BeforeDestroy = fn }

// AfterDestroy sets the hook run after the destroy methods.
func (m *Model) AfterDestroy(fn Hook) { m.hooks.AfterDestroy = fn }

// UseHook sets the hook for typ. Unknown types fail with
// INVALID_HOOK_TYPE.
func (m *Model) UseHook(typ HookType, fn Hook) error {
	return m.hooks.Set(typ, fn)
}

// checkPK validates pkey against the configured primary key type.
func (m *Model) checkPK(pkey any) error {
	switch m.table.Config().PKType {
	case PKUUID:
		switch pkey.(type) {
		case string, uuid.UUID:
			return nil
		}
		return newError(CodeInvalidPKType, "pkey must be a string if pkType is uuid")
	case PKSerial:
		if pkey != nil {
			switch reflect.TypeOf(pkey).Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
				reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
				reflect.Float32, reflect.Float64:
				return nil
			}
		}
		return newError(CodeInvalidPKType, "pkey must be a number if pkType is serial")
	}
	return nil
}

func (m *Model) pkWhere(pkey any) *query.Where {
	return &query.Where{SQL: m.table.PK().NameInTable() + " = $1", Values: []any{pkey}}
}

// FindAll returns the rows selected by opts.
func (m *Model) FindAll(ctx context.Context, opts *FindOptions) ([]map[string]any, error) {
	return m.table.Select(ctx, opts)
}

// FindAllWhere returns the rows matching a raw predicate.
func (m *Model) FindAllWhere(ctx context.Context, where string, args ...any) ([]map[string]any, error) {
	return m.table.Select(ctx, &FindOptions{Where: &query.Where{SQL: where, Values: args}})
}

// FindByPk returns the row with primary key pkey, or a *NotFoundError.
// The key is bound as given, so "1" finds row 1 of a serial table.
func (m *Model) FindByPk(ctx context.Context, pkey any) (map[string]any, error) {
	rows, err := m.table.Select(ctx, &FindOptions{Where: m.pkWhere(pkey), Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, NewNotFoundError(m.table.Name(), pkey)
	}
	return rows[0], nil
}

// FindByID is an alias of FindByPk.
func (m *Model) FindByID(ctx context.Context, id any) (map[string]any, error) {
	return m.FindByPk(ctx, id)
}

// Count returns the number of rows matching where, or of all rows.
func (m *Model) Count(ctx context.Context, where *query.Where) (int64, error) {
	return m.table.Count(ctx, where)
}

// Create inserts one row and returns it. On a uuid table a key is
// generated when data has none.
func (m *Model) Create(ctx context.Context, data Inputs) (map[string]any, error) {
	data = m.withKey(data)
	return RunWithHooks(ctx, m, OpCreate, data, func(ctx context.Context) (map[string]any, error) {
		rows, err := m.table.Insert(ctx, data)
		if err != nil || len(rows) == 0 {
			return nil, err
		}
		return rows[0], nil
	})
}

// CreateMany inserts every row concurrently. The result has one slot per
// row; rows that failed are nil and their errors are joined in an
// *AggregateError. See Table.InsertMany.
func (m *Model) CreateMany(ctx context.Context, data []Inputs) ([][]map[string]any, error) {
	keyed := make([]Inputs, len(data))
	for i, row := range data {
		keyed[i] = m.withKey(row)
	}
	return RunWithHooks(ctx, m, OpCreate, keyed, func(ctx context.Context) ([][]map[string]any, error) {
		return m.table.InsertMany(ctx, keyed)
	})
}

func (m *Model) withKey(data Inputs) Inputs {
	if data == nil || m.table.Config().PKType != PKUUID {
		return data
	}
	pkName := m.table.PK().NameInTable()
	if _, ok := data[pkName]; ok {
		return data
	}
	keyed := maps.Clone(data)
	keyed[pkName] = uuid.NewString()
	return keyed
}

// Update writes the columns present in data to the row identified by the
// primary key in data. Columns missing from data are left untouched; use
// Table.Replace to null them.
func (m *Model) Update(ctx context.Context, data Inputs) ([]map[string]any, error) {
	return RunWithHooks(ctx, m, OpUpdate, data, func(ctx context.Context) ([]map[string]any, error) {
		return m.table.Update(ctx, data, nil)
	})
}

// UpdateByPk writes the columns present in data to the row with primary
// key pkey.
func (m *Model) UpdateByPk(ctx context.Context, pkey any, data Inputs) ([]map[string]any, error) {
	if err := m.checkPK(pkey); err != nil {
		return nil, err
	}
	return RunWithHooks(ctx, m, OpUpdate, data, func(ctx context.Context) ([]map[string]any, error) {
		return m.table.Update(ctx, data, pkey)
	})
}

// UpdateByID is an alias of UpdateByPk.
func (m *Model) UpdateByID(ctx context.Context, id any, data Inputs) ([]map[string]any, error) {
	return m.UpdateByPk(ctx, id, data)
}

// Patch writes the columns present in data to the row identified by the
// primary key in data.
func (m *Model) Patch(ctx context.Context, data Inputs) ([]map[string]any, error) {
	return RunWithHooks(ctx, m, OpUpdate, data, func(ctx context.Context) ([]map[string]any, error) {
		return m.table.Update(ctx, data, nil)
	})
}

// PatchByPk writes the columns present in data to the row with primary
// key pkey.
func (m *Model) PatchByPk(ctx context.Context, pkey any, data Inputs) ([]map[string]any, error) {
	if err := m.checkPK(pkey); err != nil {
		return nil, err
	}
	return RunWithHooks(ctx, m, OpUpdate, data, func(ctx context.Context) ([]map[string]any, error) {
		return m.table.Update(ctx, data, pkey)
	})
}

// PatchByID is an alias of PatchByPk.
func (m *Model) PatchByID(ctx context.Context, id any, data Inputs) ([]map[string]any, error) {
	return m.PatchByPk(ctx, id, data)
}

// Destroy deletes the rows matching where. It is not implemented and
// always fails with NOT_IMPLEMENTED after the before hook ran.
func (m *Model) Destroy(ctx context.Context, where *query.Where) ([]map[string]any, error) {
	return RunWithHooks(ctx, m, OpDestroy, where, func(ctx context.Context) ([]map[string]any, error) {
		return m.table.Delete(ctx, where)
	})
}

// DestroyByPk deletes, or soft deletes on a paranoid table, the row with
// primary key pkey.
func (m *Model) DestroyByPk(ctx context.Context, pkey any) ([]map[string]any, error) {
	if err := m.checkPK(pkey); err != nil {
		return nil, err
	}
	return RunWithHooks(ctx, m, OpDestroy, pkey, func(ctx context.Context) ([]map[string]any, error) {
		return m.table.Delete(ctx, pkey)
	})
}

// DestroyByID is an alias of DestroyByPk.
func (m *Model) DestroyByID(ctx context.Context, id any) ([]map[string]any, error) {
	return m.DestroyByPk(ctx, id)
}

// AddForeignKey adds a foreign key constraint to the table.
func (m *Model) AddForeignKey(ctx context.Context, fk query.ForeignKey) error {
	return m.table.AddForeignKey(ctx, fk)
}
