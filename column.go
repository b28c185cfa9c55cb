package pgmodel

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Inputs is a row payload keyed by column name.
type Inputs = map[string]any

// Validator checks one column value. all holds every input of the row.
// A non-nil error aborts the write and is returned to the caller as is.
type Validator func(value any, name string, all Inputs) error

// Formatter transforms a column value before it is written.
type Formatter func(value any) any

// Column is one table column.
type Column struct {
	name        string
	sql         string
	nameInTable string
	validations []Validator
	formatter   Formatter
}

// NewColumn builds a column from a definition template. Every "@name" in
// sqlTemplate is replaced with name.
func NewColumn(name, sqlTemplate string, validations []Validator, formatter Formatter) *Column {
	sql := strings.ReplaceAll(sqlTemplate, "@name", name)
	nameInTable := name
	if fields := strings.Fields(sql); len(fields) > 0 {
		nameInTable = fields[0]
	}
	return &Column{
		name:        name,
		sql:         sql,
		nameInTable: nameInTable,
		validations: validations,
		formatter:   formatter,
	}
}

// Name returns the column's declared name.
func (c *Column) Name() string { return c.name }

// SetName renames the column. The definition and the name in the table
// are left untouched.
func (c *Column) SetName(name string) { c.name = name }

// SQL returns the column definition.
func (c *Column) SQL() string { return c.sql }

// NameInTable returns the first token of the definition.
func (c *Column) NameInTable() string { return c.nameInTable }

// DataType returns the second token of the definition, or "" if there is
// none.
func (c *Column) DataType() string {
	fields := strings.Fields(c.sql)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

// Format applies the column formatter to v.
func (c *Column) Format(v any) any {
	if c.formatter == nil {
		return v
	}
	return c.formatter(v)
}

// RunValidations runs every validator in order and returns the first
// error.
func (c *Column) RunValidations(v any, all Inputs) error {
	for _, validate := range c.validations {
		if err := validate(v, c.name, all); err != nil {
			return err
		}
	}
	return nil
}

// ColumnSpec declares a column. SQL may use "@name" for the column name.
type ColumnSpec struct {
	Name        string
	SQL         string
	Validations []Validator
	Formatter   Formatter
}

// Column builds the Column described by s.
func (s ColumnSpec) Column() *Column {
	return NewColumn(s.Name, s.SQL, s.Validations, s.Formatter)
}

// ColumnSpecs is an ordered list of column declarations. In YAML it is a
// mapping of column name to {sql: ...}; document order is kept.
type ColumnSpecs []ColumnSpec

// Names returns the declared column names in order.
func (s ColumnSpecs) Names() []string {
	names := make([]string, len(s))
	for i, spec := range s {
		names[i] = spec.Name
	}
	return names
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *ColumnSpecs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("pgmodel: columns must be a mapping (line %d)", node.Line)
	}
	specs := make(ColumnSpecs, 0, len(node.Content)/2)
	seen := make(map[string]int, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if line, ok := seen[key.Value]; ok {
			return fmt.Errorf("pgmodel: column %q already defined at line %d", key.Value, line)
		}
		seen[key.Value] = key.Line
		var body struct {
			SQL string `yaml:"sql"`
		}
		switch value.Kind {
		case yaml.ScalarNode:
			body.SQL = value.Value
		default:
			if err := value.Decode(&body); err != nil {
				return fmt.Errorf("pgmodel: column %q: %w", key.Value, err)
			}
		}
		specs = append(specs, ColumnSpec{Name: key.Value, SQL: body.SQL})
	}
	*s = specs
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s ColumnSpecs) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, spec := range s {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: spec.Name},
			&yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
				{Kind: yaml.ScalarNode, Value: "sql"},
				{Kind: yaml.ScalarNode, Value: spec.SQL},
			}},
		)
	}
	return node, nil
}
