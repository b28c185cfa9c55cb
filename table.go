package pgmodel

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/pgmodel/dialect"
	"github.com/syssam/pgmodel/dialect/sql"
	"github.com/syssam/pgmodel/query"
)

// Option configures a Table (and the Model wrapping it).
type Option func(*Table)

// WithDriver sets the client statements run on.
func WithDriver(drv dialect.ExecQuerier) Option {
	return func(t *Table) {
		t.client = drv
	}
}

// WithLogger sets the logger used for the Logs and ErrLogs output.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Table) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithFindDefaults replaces the defaults every Select merges over.
func WithFindDefaults(opts FindOptions) Option {
	return func(t *Table) {
		t.find = opts
	}
}

// Table maps one database table. The primary key column is always first.
//
// Configuration methods (SetColumns, AddTimestamps, SetParanoid) must not
// run concurrently with statements on the same Table.
type Table struct {
	name       string
	columns    []*Column
	options    *Options[Config]
	find       FindOptions
	timestamps Timestamps
	builder    *query.Builder
	client     dialect.ExecQuerier
	logger     *slog.Logger
	now        func() time.Time
}

// NewTable returns a table named prefix+name with the given columns. A nil
// cfg means DefaultConfig.
func NewTable(name string, specs ColumnSpecs, cfg *Config, opts ...Option) *Table {
	options := NewOptions(cfg, DefaultConfig())
	c := options.Config()
	t := &Table{
		name:       c.Prefix + name,
		options:    options,
		find:       DefaultFindOptions(),
		timestamps: c.Timestamps,
		logger:     slog.Default(),
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(t)
	}
	t.SetColumns(specs...)
	return t
}

// Name returns the table name, prefix included.
func (t *Table) Name() string { return t.name }

// Config returns the effective configuration.
func (t *Table) Config() Config { return t.options.Config() }

// Options returns the merged configuration holder.
func (t *Table) Options() *Options[Config] { return t.options }

// Timestamps returns the resolved timestamp column names.
func (t *Table) Timestamps() Timestamps { return t.timestamps }

// Builder returns the statement builder for the current columns.
func (t *Table) Builder() *query.Builder { return t.builder }

// Client returns the client statements run on, or nil.
func (t *Table) Client() dialect.ExecQuerier { return t.client }

// UseDriver sets the client statements run on.
func (t *Table) UseDriver(drv dialect.ExecQuerier) { t.client = drv }

// Logger returns the table logger.
func (t *Table) Logger() *slog.Logger { return t.logger }

// SetColumns replaces the table columns with the primary key followed by
// specs in order. Timestamp columns are added when enabled, and the
// deleted-at column when the table is also paranoid.
func (t *Table) SetColumns(specs ...ColumnSpec) {
	c := t.Config()
	pk := NewColumn(c.PKName, "@name "+c.PKType+" NOT NULL PRIMARY KEY", nil, nil)
	columns := make([]*Column, 0, len(specs)+4)
	columns = append(columns, pk)
	for _, spec := range specs {
		columns = append(columns, spec.Column())
	}
	t.columns = columns
	if c.Timestamps.Enabled {
		t.AddTimestamps()
		if c.Paranoid {
			_ = t.SetParanoid()
		}
	}
	t.rebuild()
}

func errParanoidWithoutTimestamps() error {
	return newError(CodeNoTimestamps, "Please set timestamps before setting paranoid")
}

func (t *Table) rebuild() {
	t.builder = query.NewBuilder(t.name, t.ColumnNames(true))
}

// Columns returns the table columns in order.
func (t *Table) Columns() []*Column { return slices.Clone(t.columns) }

// Column returns the column declared as name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.columns {
		if c.Name() == name || c.NameInTable() == name {
			return c
		}
	}
	return nil
}

// PK returns the primary key column.
func (t *Table) PK() *Column { return t.columns[0] }

// AddTimestamps appends the created-at and updated-at columns unless they
// are already present.
func (t *Table) AddTimestamps() {
	t.addColumn(NewColumn(t.timestamps.CreatedAt, "@name timestamp default now()", nil, nil))
	t.addColumn(NewColumn(t.timestamps.UpdatedAt, "@name timestamp default now()", nil, nil))
	t.rebuild()
}

// SetParanoid appends the deleted-at column unless it is already present.
// It fails with NO_TIMESTAMPS when timestamps are not enabled.
func (t *Table) SetParanoid() error {
	if !t.Config().Timestamps.Enabled {
		return errParanoidWithoutTimestamps()
	}
	t.addColumn(NewColumn(t.timestamps.DeletedAt, "@name timestamp", nil, nil))
	t.rebuild()
	return nil
}

func (t *Table) addColumn(col *Column) {
	if t.Column(col.NameInTable()) != nil {
		return
	}
	t.columns = append(t.columns, col)
}

// ColumnNames returns the names of the columns in the table. Timestamp
// columns are left out unless includeTimestamps is set.
func (t *Table) ColumnNames(includeTimestamps bool) []string {
	names := make([]string, 0, len(t.columns))
	skip := t.timestamps.Names()
	for _, c := range t.columns {
		if !includeTimestamps && slices.Contains(skip, c.NameInTable()) {
			continue
		}
		names = append(names, c.NameInTable())
	}
	return names
}

// ValidInputs keeps the entries of inputs that name a writable column.
// With useNulls every writable column is present and missing ones are
// nil. inputs must be a map[string]any; anything else is INVALID_INPUT.
func (t *Table) ValidInputs(inputs any, useNulls bool) (Inputs, error) {
	all, ok := inputs.(map[string]any)
	if !ok || all == nil {
		return nil, newError(CodeInvalidInput, "Inputs must be an object")
	}
	valid := make(Inputs, len(all))
	for _, name := range t.ColumnNames(false) {
		v, ok := all[name]
		switch {
		case ok:
			valid[name] = v
		case useNulls:
			valid[name] = nil
		}
	}
	return valid, nil
}

// ArrangeInputs orders inputs as the table columns and returns the
// values along with the matching column names.
func (t *Table) ArrangeInputs(inputs Inputs) ([]any, []string) {
	var (
		values  []any
		columns []string
	)
	for _, name := range t.ColumnNames(false) {
		if v, ok := inputs[name]; ok {
			values = append(values, v)
			columns = append(columns, name)
		}
	}
	return values, columns
}

// RunValidations runs every column's validators against its value in
// inputs. A missing value is validated as nil.
func (t *Table) RunValidations(inputs Inputs) error {
	for _, c := range t.columns {
		if err := c.RunValidations(inputs[c.NameInTable()], inputs); err != nil {
			return err
		}
	}
	return nil
}

// runPartialValidations validates only the columns present in inputs.
func (t *Table) runPartialValidations(inputs Inputs) error {
	for _, c := range t.columns {
		v, ok := inputs[c.NameInTable()]
		if !ok {
			continue
		}
		if err := c.RunValidations(v, inputs); err != nil {
			return err
		}
	}
	return nil
}

// format applies column formatters to the non-nil values of inputs.
func (t *Table) format(inputs Inputs) {
	for name, v := range inputs {
		if v == nil {
			continue
		}
		if c := t.Column(name); c != nil {
			inputs[name] = c.Format(v)
		}
	}
}

// run executes st. Failures come back as *ExecError.
func (t *Table) run(ctx context.Context, op string, st *query.Statement) ([]map[string]any, error) {
	c := t.Config()
	if c.Logs {
		st.Log(ctx, t.logger)
	}
	if t.client == nil {
		return nil, newError(CodeNoClient, "Please set a client before running statements on %s", t.name)
	}
	rows, err := st.Run(ctx, t.client)
	if err != nil {
		if sql.IsConstraintError(err) {
			err = NewConstraintError(err.Error(), err)
		}
		if c.ErrLogs {
			t.logger.ErrorContext(ctx, "pgmodel: statement failed",
				"table", t.name, "op", op, "sql", st.SQL(), "error", err)
		}
		return nil, &ExecError{Table: t.name, Op: op, SQL: st.SQL(), Err: err}
	}
	return rows, nil
}

// Create creates the table if it does not exist, adding the timestamp
// and deleted-at columns as configured.
func (t *Table) Create(ctx context.Context) error {
	c := t.Config()
	if c.Timestamps.Enabled {
		t.AddTimestamps()
	}
	if c.Paranoid {
		if err := t.SetParanoid(); err != nil {
			return err
		}
	}
	definitions := make([]string, len(t.columns))
	for i, col := range t.columns {
		definitions[i] = col.SQL()
	}
	_, err := t.run(ctx, "create", t.builder.CreateTable(strings.Join(definitions, ",")))
	return err
}

// Select returns the rows matching opts merged over the table's find
// defaults. Requested columns are projected in table order.
func (t *Table) Select(ctx context.Context, opts *FindOptions) ([]map[string]any, error) {
	merged := NewOptions(opts, t.find).Config()
	columns := t.ColumnNames(true)
	if len(merged.Columns) > 0 {
		var projected []string
		for _, name := range columns {
			if slices.Contains(merged.Columns, name) {
				projected = append(projected, name)
			}
		}
		if len(projected) == 0 {
			return nil, newError(CodeInvalidParam, "none of the columns %v exist in %s", merged.Columns, t.name)
		}
		columns = projected
	}
	return t.run(ctx, "select", t.builder.Select(query.SelectOptions{
		Columns: columns,
		Where:   merged.Where,
		GroupBy: merged.GroupBy,
		OrderBy: merged.OrderBy,
		Limit:   merged.Limit,
		Offset:  merged.Offset,
	}))
}

// Insert validates, formats and inserts one row, returning the inserted
// rows.
func (t *Table) Insert(ctx context.Context, data any) ([]map[string]any, error) {
	inputs, err := t.ValidInputs(data, false)
	if err != nil {
		return nil, err
	}
	if err := t.RunValidations(inputs); err != nil {
		return nil, err
	}
	t.format(inputs)
	values, columns := t.ArrangeInputs(inputs)
	return t.run(ctx, "insert", t.builder.InsertColumns(values, columns))
}

// InsertMany inserts every element independently and concurrently. The
// result has one slot per element; failed slots are nil and every
// failure is reported in the returned error.
func (t *Table) InsertMany(ctx context.Context, data []Inputs) ([][]map[string]any, error) {
	results := make([][]map[string]any, len(data))
	errs := make([]error, len(data))
	var g errgroup.Group
	for i, row := range data {
		g.Go(func() error {
			results[i], errs[i] = t.Insert(ctx, row)
			return nil
		})
	}
	_ = g.Wait()
	return results, NewAggregateError(errs...)
}

// Update writes the supplied columns of data to the row with primary key
// pkey. A nil pkey takes the key from data; when data has none either,
// NULL is bound and no row matches.
func (t *Table) Update(ctx context.Context, data any, pkey any) ([]map[string]any, error) {
	inputs, err := t.ValidInputs(data, false)
	if err != nil {
		return nil, err
	}
	if err := t.runPartialValidations(inputs); err != nil {
		return nil, err
	}
	return t.update(ctx, inputs, pkey)
}

// Replace writes every column of the row with primary key pkey; columns
// missing from data are set to NULL. The primary key itself is only
// written when data carries it.
func (t *Table) Replace(ctx context.Context, data any, pkey any) ([]map[string]any, error) {
	inputs, err := t.ValidInputs(data, true)
	if err != nil {
		return nil, err
	}
	pkName := t.PK().NameInTable()
	if _, ok := data.(map[string]any)[pkName]; !ok {
		delete(inputs, pkName)
	}
	if err := t.RunValidations(inputs); err != nil {
		return nil, err
	}
	return t.update(ctx, inputs, pkey)
}

func (t *Table) update(ctx context.Context, inputs Inputs, pkey any) ([]map[string]any, error) {
	pkName := t.PK().NameInTable()
	if pkey == nil {
		pkey = inputs[pkName]
	}
	t.format(inputs)
	values, columns := t.ArrangeInputs(inputs)
	if len(values) == 0 {
		return nil, newError(CodeInvalidInput, "no columns of %s to update", t.name)
	}
	if t.Config().Timestamps.Enabled {
		values = append(values, t.now())
		columns = append(columns, t.timestamps.UpdatedAt)
	}
	st, err := t.builder.Update(values, columns, &query.Where{SQL: pkName + "=#{idnum}", Values: []any{pkey}})
	if err != nil {
		return nil, err
	}
	return t.run(ctx, "update", st)
}

// Delete removes the row with primary key target. On a paranoid table the
// row's deleted-at column is set to the current time instead, which needs
// timestamps. Deleting by a where clause or a map of values is not
// implemented.
func (t *Table) Delete(ctx context.Context, target any) ([]map[string]any, error) {
	switch target.(type) {
	case query.Where, *query.Where, map[string]any:
		return nil, newError(CodeNotImplemented, "delete by where clause is not implemented")
	}
	pkName := t.PK().NameInTable()
	if c := t.Config(); c.Paranoid {
		if !c.Timestamps.Enabled {
			return nil, errParanoidWithoutTimestamps()
		}
		st, err := t.builder.Update(
			[]any{t.now()},
			[]string{t.timestamps.DeletedAt},
			&query.Where{SQL: pkName + "=#{idnum}", Values: []any{target}},
		)
		if err != nil {
			return nil, err
		}
		return t.run(ctx, "delete", st)
	}
	return t.run(ctx, "delete", t.builder.Delete(&query.Where{SQL: pkName + "=$1", Values: []any{target}}))
}

// Exists reports whether the table exists.
func (t *Table) Exists(ctx context.Context) (bool, error) {
	return t.exists(ctx, t.builder.TableExists())
}

// ColumnExists reports whether the table has column name. An empty
// dataType matches any type.
func (t *Table) ColumnExists(ctx context.Context, name, dataType string) (bool, error) {
	return t.exists(ctx, t.builder.ColumnExists(name, dataType))
}

// ConstraintExists reports whether the table has a constraint called name.
func (t *Table) ConstraintExists(ctx context.Context, name string) (bool, error) {
	return t.exists(ctx, t.builder.ConstraintExists(name))
}

func (t *Table) exists(ctx context.Context, st *query.Statement) (bool, error) {
	rows, err := t.run(ctx, "exists", st)
	if err != nil {
		return false, err
	}
	v := firstValue(rows)
	b, _ := v.(bool)
	return b, nil
}

// Drop drops the table if it exists.
func (t *Table) Drop(ctx context.Context) error {
	_, err := t.run(ctx, "drop", t.builder.DropTable())
	return err
}

// DropColumn drops column name from the table.
func (t *Table) DropColumn(ctx context.Context, name string) error {
	_, err := t.run(ctx, "alter", t.builder.DropColumn(name))
	return err
}

// Alter adds the columns missing from the database table when the Alter
// option is set. It reports whether the table was changed.
func (t *Table) Alter(ctx context.Context) (bool, error) {
	if !t.Config().Alter {
		return false, nil
	}
	missing := make([]bool, len(t.columns))
	g, gctx := errgroup.WithContext(ctx)
	for i, col := range t.columns {
		g.Go(func() error {
			ok, err := t.ColumnExists(gctx, col.NameInTable(), "")
			missing[i] = !ok
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	var definitions []string
	for i, col := range t.columns {
		if missing[i] {
			definitions = append(definitions, col.SQL())
		}
	}
	if len(definitions) == 0 {
		return false, nil
	}
	if _, err := t.run(ctx, "alter", t.builder.AddColumns(definitions)); err != nil {
		return false, err
	}
	return true, nil
}

// AddForeignKey adds fk unless the constraint already exists. The column
// must exist in the database as an integer column.
func (t *Table) AddForeignKey(ctx context.Context, fk query.ForeignKey) error {
	ok, err := t.ColumnExists(ctx, fk.Column, "integer")
	if err != nil {
		return err
	}
	if !ok {
		return newError(CodeColumnNotFound, "%s column not found in %s table", fk.Column, t.name)
	}
	ok, err = t.ConstraintExists(ctx, t.builder.ConstraintName(fk.Column))
	if err != nil || ok {
		return err
	}
	_, err = t.run(ctx, "alter", t.builder.ForeignKey(fk))
	return err
}

// Count returns the number of rows matching where, or of all rows when
// where is nil.
func (t *Table) Count(ctx context.Context, where *query.Where) (int64, error) {
	rows, err := t.run(ctx, "count", t.builder.Count("", where))
	if err != nil {
		return 0, err
	}
	return toInt64(firstValue(rows))
}

// Sum returns the sum of column over the rows matching where. An empty
// set sums to zero.
func (t *Table) Sum(ctx context.Context, column string, where *query.Where) (float64, error) {
	st, err := t.builder.Sum(column, where)
	if err != nil {
		return 0, err
	}
	rows, err := t.run(ctx, "sum", st)
	if err != nil {
		return 0, err
	}
	return toFloat64(firstValue(rows))
}
