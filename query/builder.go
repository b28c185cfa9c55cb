package query

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// Where is a raw predicate with its own positional arguments. Values are
// appended after the statement's primary values; use #{idnum} in SQL to
// refer to the last argument.
type Where struct {
	SQL    string
	Values []any
}

// References is the target side of a foreign key.
type References struct {
	Table  string `yaml:"table"`
	Column string `yaml:"column"`
}

// ForeignKey describes a foreign key constraint on a single column.
type ForeignKey struct {
	Column     string     `yaml:"column"`
	References References `yaml:"references"`
	OnDelete   string     `yaml:"onDelete,omitempty"`
	OnUpdate   string     `yaml:"onUpdate,omitempty"`
}

// SelectOptions controls the SELECT rendered by Builder.Select. Zero
// Limit and Offset are treated as absent.
type SelectOptions struct {
	Columns []string
	Where   *Where
	GroupBy []string
	OrderBy []string
	Limit   int
	Offset  int
}

// Builder renders statements for a single table.
type Builder struct {
	table   string
	columns []string
}

// NewBuilder returns a Builder for table with the given ordered columns.
func NewBuilder(table string, columns []string) *Builder {
	return &Builder{table: table, columns: slices.Clone(columns)}
}

// Table returns the table name the builder renders for.
func (b *Builder) Table() string { return b.table }

// Columns returns a copy of the builder's column list.
func (b *Builder) Columns() []string { return slices.Clone(b.columns) }

// Prepare renders template with the given values. An empty columns list
// falls back to the builder's columns. The returned statement does not
// report rows; the operation methods set that where it applies.
func (b *Builder) Prepare(template string, values []any, columns []string, where *Where) *Statement {
	if len(columns) == 0 {
		columns = b.columns
	}
	placeholders := make([]string, len(values))
	updates := make([]string, len(values))
	for i := range values {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		col := ""
		if i < len(columns) {
			col = columns[i]
		}
		updates[i] = col + "=" + placeholders[i]
	}
	args := make([]any, 0, len(values))
	args = append(args, values...)
	whereClause := ""
	if where != nil && where.SQL != "" {
		whereClause = " WHERE " + where.SQL
		args = append(args, where.Values...)
	}
	text := strings.ReplaceAll(template, "#{tableName}", b.table)
	text = strings.Replace(text, "#{columns}", strings.Join(columns, ","), 1)
	text = strings.Replace(text, "#{values}", strings.Join(placeholders, ","), 1)
	text = strings.Replace(text, "#{updateValues}", strings.Join(updates, ","), 1)
	text = strings.Replace(text, "#{where}", whereClause, 1)
	text = strings.Replace(text, "#{idnum}", "$"+strconv.Itoa(len(args)), 1)
	text = strings.Replace(text, "  ", " ", 1)
	return &Statement{sql: strings.TrimSpace(text), args: args}
}

// Insert renders an INSERT of values into the builder's columns.
func (b *Builder) Insert(values []any) *Statement {
	return b.InsertColumns(values, nil)
}

// InsertColumns renders an INSERT of values into the given columns. With
// no values the row is inserted with DEFAULT VALUES.
func (b *Builder) InsertColumns(values []any, columns []string) *Statement {
	if len(values) == 0 {
		st := b.Prepare("INSERT INTO #{tableName} DEFAULT VALUES RETURNING *", nil, nil, nil)
		st.rows = true
		return st
	}
	st := b.Prepare("INSERT INTO #{tableName} (#{columns}) VALUES (#{values}) RETURNING *", values, columns, nil)
	st.rows = true
	return st
}

// Select renders a SELECT. The WHERE clause comes before GROUP BY,
// ORDER BY, LIMIT and OFFSET.
func (b *Builder) Select(opts SelectOptions) *Statement {
	var sb strings.Builder
	sb.WriteString("SELECT #{columns} FROM #{tableName}#{where}")
	if len(opts.GroupBy) > 0 {
		sb.WriteString(" GROUP BY " + strings.Join(opts.GroupBy, ","))
	}
	if len(opts.OrderBy) > 0 {
		sb.WriteString(" ORDER BY " + strings.Join(opts.OrderBy, ","))
	}
	switch {
	case opts.Offset != 0 && opts.Limit != 0:
		fmt.Fprintf(&sb, " LIMIT %d OFFSET %d", opts.Limit, opts.Offset)
	case opts.Offset != 0:
		fmt.Fprintf(&sb, " OFFSET %d", opts.Offset)
	case opts.Limit != 0:
		fmt.Fprintf(&sb, " LIMIT %d", opts.Limit)
	}
	st := b.Prepare(sb.String(), nil, opts.Columns, opts.Where)
	st.rows = true
	return st
}

// Update renders an UPDATE setting columns[i] to values[i]. An empty
// columns list means the builder's columns. It fails with
// UPDATE_VALUES_MISMATCH when both lists are non-empty and their lengths
// differ.
func (b *Builder) Update(values []any, columns []string, where *Where) (*Statement, error) {
	target := columns
	if len(target) == 0 {
		target = b.columns
	}
	if len(values) > 0 && len(target) > 0 && len(values) != len(target) {
		return nil, NewError(CodeUpdateValuesMismatch, "The number of values and columns must be equal")
	}
	st := b.Prepare("UPDATE #{tableName} SET #{updateValues} #{where} RETURNING *", values, target, where)
	st.rows = true
	return st, nil
}

// Delete renders a DELETE. A nil where deletes every row.
func (b *Builder) Delete(where *Where) *Statement {
	st := b.Prepare("DELETE FROM #{tableName} #{where} RETURNING *", nil, nil, where)
	st.rows = true
	return st
}

// Count renders SELECT COUNT over column, or over * when column is empty.
func (b *Builder) Count(column string, where *Where) *Statement {
	if column == "" {
		column = "*"
	}
	st := b.Prepare("SELECT COUNT("+column+") FROM #{tableName} #{where}", nil, nil, where)
	st.rows = true
	return st
}

// Sum renders SELECT SUM over column.
func (b *Builder) Sum(column string, where *Where) (*Statement, error) {
	if column == "" {
		return nil, NewError(CodeInvalidParam, `"column" must be a non empty string`)
	}
	st := b.Prepare("SELECT SUM("+column+") FROM #{tableName} #{where}", nil, nil, where)
	st.rows = true
	return st, nil
}

// TableExists renders a catalog lookup for the table.
func (b *Builder) TableExists() *Statement {
	return b.exists("SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_name = " + pq.QuoteLiteral(b.table) + ")")
}

// ColumnExists renders a catalog lookup for a column. An empty dataType
// matches a column of any type.
func (b *Builder) ColumnExists(name, dataType string) *Statement {
	q := "SELECT EXISTS(SELECT 1 FROM information_schema.columns WHERE table_name = " + pq.QuoteLiteral(b.table) +
		" AND column_name = " + pq.QuoteLiteral(name)
	if dataType != "" {
		q += " AND data_type = " + pq.QuoteLiteral(dataType)
	}
	return b.exists(q + ")")
}

// ConstraintExists renders a catalog lookup for a named constraint.
func (b *Builder) ConstraintExists(name string) *Statement {
	return b.exists("SELECT EXISTS(SELECT 1 FROM information_schema.table_constraints WHERE table_name = " +
		pq.QuoteLiteral(b.table) + " AND constraint_name = " + pq.QuoteLiteral(name) + ")")
}

func (b *Builder) exists(q string) *Statement {
	return &Statement{sql: q, args: []any{}, rows: true}
}

// CreateTable renders CREATE TABLE IF NOT EXISTS with the given column
// definitions.
func (b *Builder) CreateTable(definitions string) *Statement {
	return b.Prepare("CREATE TABLE IF NOT EXISTS #{tableName} ("+definitions+")", nil, nil, nil)
}

// AddColumns renders an ALTER TABLE adding every definition.
func (b *Builder) AddColumns(definitions []string) *Statement {
	parts := make([]string, len(definitions))
	for i, d := range definitions {
		parts[i] = "ADD COLUMN " + d
	}
	return b.Prepare("ALTER TABLE #{tableName} "+strings.Join(parts, ", "), nil, nil, nil)
}

// DropTable renders DROP TABLE IF EXISTS.
func (b *Builder) DropTable() *Statement {
	return b.Prepare("DROP TABLE IF EXISTS #{tableName}", nil, nil, nil)
}

// DropColumn renders an ALTER TABLE dropping column name.
func (b *Builder) DropColumn(name string) *Statement {
	return b.Prepare("ALTER TABLE #{tableName} DROP COLUMN "+name, nil, nil, nil)
}

// ConstraintName returns the name ForeignKey gives the constraint on column.
func (b *Builder) ConstraintName(column string) string {
	return b.table + "_" + column + "_fkey"
}

// ForeignKey renders an ALTER TABLE adding fk as a named constraint.
func (b *Builder) ForeignKey(fk ForeignKey) *Statement {
	q := fmt.Sprintf("ALTER TABLE #{tableName} ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		b.ConstraintName(fk.Column), fk.Column, fk.References.Table, fk.References.Column)
	if fk.OnDelete != "" {
		q += " ON DELETE " + fk.OnDelete
	}
	if fk.OnUpdate != "" {
		q += " ON UPDATE " + fk.OnUpdate
	}
	return b.Prepare(q, nil, nil, nil)
}
