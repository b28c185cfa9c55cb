package query

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/syssam/pgmodel/dialect"
	"github.com/syssam/pgmodel/dialect/sql"
)

// Statement is a rendered SQL statement. Its methods never modify the
// receiver.
type Statement struct {
	sql  string
	args []any
	rows bool
}

// NewStatement returns a statement for raw text and arguments. rows
// reports whether running it should read result rows.
func NewStatement(text string, args []any, rows bool) *Statement {
	return &Statement{sql: text, args: slices.Clone(args), rows: rows}
}

// SQL returns the statement text.
func (s *Statement) SQL() string { return s.sql }

// Args returns a copy of the positional arguments.
func (s *Statement) Args() []any { return slices.Clone(s.args) }

// ReturnsRows reports whether the statement produces result rows.
func (s *Statement) ReturnsRows() bool { return s.rows }

// String implements fmt.Stringer.
func (s *Statement) String() string { return s.sql }

// Returning returns a copy of s whose RETURNING clause lists cols. cols
// may be "*", a single comma separated string, or a list of names. Any
// existing RETURNING clause is replaced.
func (s *Statement) Returning(cols ...string) (*Statement, error) {
	var list string
	switch {
	case len(cols) == 0, len(cols) == 1 && cols[0] == "":
		return nil, NewError(CodeInvalidParam, `cols can either be '*' or 'col1,col2' or ['col1', 'col2']`)
	case len(cols) == 1:
		list = cols[0]
	default:
		list = strings.Join(cols, ",")
	}
	text := s.sql
	if i := strings.LastIndex(text, " RETURNING "); i >= 0 {
		text = text[:i]
	}
	return &Statement{sql: text + " RETURNING " + list, args: s.Args(), rows: true}, nil
}

// OrderBy returns a copy of s with an ORDER BY clause appended.
func (s *Statement) OrderBy(cols ...string) *Statement {
	return s.appendClause(" ORDER BY ", cols)
}

// GroupBy returns a copy of s with a GROUP BY clause appended.
func (s *Statement) GroupBy(cols ...string) *Statement {
	return s.appendClause(" GROUP BY ", cols)
}

func (s *Statement) appendClause(keyword string, cols []string) *Statement {
	if len(cols) == 0 {
		return s
	}
	return &Statement{sql: s.sql + keyword + strings.Join(cols, ","), args: s.Args(), rows: s.rows}
}

// Log writes the statement and its arguments to logger and returns s. A nil logger means slog.Default().
func (s *Statement) Log(ctx context.Context, logger *slog.Logger) *Statement {
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "pgmodel: statement", "sql", s.sql, "args", s.args)
	return s
}

// Run executes the statement on client. Statements that return rows are
// sent through Query and scanned into records; the rest go through Exec
// and yield no records.
func (s *Statement) Run(ctx context.Context, client dialect.ExecQuerier) ([]map[string]any, error) {
	if client == nil {
		return nil, NewError(CodeNoClient, "a client must be set before running statements")
	}
	args := s.Args()
	if args == nil {
		args = []any{}
	}
	if !s.rows {
		return nil, client.Exec(ctx, s.sql, args, nil)
	}
	var rows sql.Rows
	if err := client.Query(ctx, s.sql, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	return sql.ScanRecords(rows)
}
