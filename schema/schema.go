package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/pgmodel"
	"github.com/syssam/pgmodel/query"
)

// Table is one declared table.
type Table struct {
	Name        string              `yaml:"table"`
	Config      *pgmodel.Config     `yaml:"config,omitempty"`
	Columns     pgmodel.ColumnSpecs `yaml:"columns"`
	ForeignKeys []query.ForeignKey  `yaml:"foreignKeys,omitempty"`
}

// EffectiveConfig returns the table config merged over the defaults.
func (t *Table) EffectiveConfig() pgmodel.Config {
	return pgmodel.NewOptions(t.Config, pgmodel.DefaultConfig()).Config()
}

// FullName returns the table name with the configured prefix.
func (t *Table) FullName() string {
	return t.EffectiveConfig().Prefix + t.Name
}

// Model returns a model for the table with its columns set.
func (t *Table) Model(opts ...pgmodel.Option) *pgmodel.Model {
	m := pgmodel.New(t.Name, t.Config, opts...)
	m.Table().SetColumns(t.Columns...)
	return m
}

type file struct {
	Table  `yaml:",inline"`
	Tables []*Table `yaml:"tables"`
}

// Parse decodes the tables declared in data.
func Parse(data []byte) ([]*Table, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("schema: empty document")
		}
		return nil, fmt.Errorf("schema: %w", err)
	}
	switch {
	case len(f.Tables) > 0 && f.Name != "":
		return nil, errors.New(`schema: "table" and "tables" cannot be used together`)
	case len(f.Tables) > 0:
		return f.Tables, nil
	case f.Name != "":
		t := f.Table
		return []*Table{&t}, nil
	default:
		return nil, errors.New("schema: no table declared")
	}
}

// Load reads and parses the schema file at path.
func Load(path string) ([]*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	tables, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tables, nil
}
