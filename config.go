package pgmodel

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/syssam/pgmodel/query"
)

// Primary key types understood by Model.
const (
	PKSerial = "serial"
	PKUUID   = "uuid"
)

// Config is the per-table configuration.
//
// Boolean fields can only be switched on by a partial config; the
// defaults have them all off.
type Config struct {
	// Prefix is prepended to the table name.
	Prefix string `yaml:"prefix"`
	// PKName is the primary key column name. Default "id".
	PKName string `yaml:"pkName"`
	// PKType is the primary key SQL type. Default "serial".
	PKType string `yaml:"pkType"`
	// Alter lets Table.Alter add missing columns to an existing table.
	Alter bool `yaml:"alter"`
	// Paranoid turns deletes into updates of the deleted-at column.
	// It requires Timestamps.
	Paranoid bool `yaml:"paranoid"`
	// Timestamps adds created-at and updated-at columns.
	Timestamps Timestamps `yaml:"timestamps"`
	// Logs logs every statement before it runs.
	Logs bool `yaml:"logs"`
	// ErrLogs logs every failed statement.
	ErrLogs bool `yaml:"errLogs"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		PKName:     "id",
		PKType:     PKSerial,
		Timestamps: DefaultTimestamps(),
	}
}

// MergeOver implements Merger.
func (c Config) MergeOver(d Config) Config {
	out := d
	if c.Prefix != "" {
		out.Prefix = c.Prefix
	}
	if c.PKName != "" {
		out.PKName = c.PKName
	}
	if c.PKType != "" {
		out.PKType = c.PKType
	}
	out.Alter = c.Alter || d.Alter
	out.Paranoid = c.Paranoid || d.Paranoid
	out.Logs = c.Logs || d.Logs
	out.ErrLogs = c.ErrLogs || d.ErrLogs
	out.Timestamps = c.Timestamps.MergeOver(d.Timestamps)
	return out
}

// Timestamps configures the timestamp columns. In YAML it is either a
// boolean or a mapping of custom column names, which also enables it.
type Timestamps struct {
	Enabled   bool   `yaml:"-"`
	CreatedAt string `yaml:"createdAt"`
	UpdatedAt string `yaml:"updatedAt"`
	DeletedAt string `yaml:"deletedAt"`
}

// DefaultTimestamps returns disabled timestamps with the default names.
func DefaultTimestamps() Timestamps {
	return Timestamps{
		CreatedAt: "created_at",
		UpdatedAt: "updated_at",
		DeletedAt: "deleted_at",
	}
}

// MergeOver implements Merger.
func (ts Timestamps) MergeOver(d Timestamps) Timestamps {
	out := d
	out.Enabled = ts.Enabled || d.Enabled
	if ts.CreatedAt != "" {
		out.CreatedAt = ts.CreatedAt
	}
	if ts.UpdatedAt != "" {
		out.UpdatedAt = ts.UpdatedAt
	}
	if ts.DeletedAt != "" {
		out.DeletedAt = ts.DeletedAt
	}
	return out
}

// Names returns the created, updated and deleted column names.
func (ts Timestamps) Names() []string {
	return []string{ts.CreatedAt, ts.UpdatedAt, ts.DeletedAt}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (ts *Timestamps) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&ts.Enabled)
	case yaml.MappingNode:
		type plain Timestamps
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		*ts = Timestamps(p)
		ts.Enabled = true
		return nil
	default:
		return fmt.Errorf("pgmodel: timestamps must be a boolean or a mapping (line %d)", node.Line)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (ts Timestamps) MarshalYAML() (any, error) {
	if !ts.Enabled {
		return false, nil
	}
	type plain Timestamps
	return plain(ts), nil
}

// FindOptions controls Table.Select and the Model finders.
type FindOptions struct {
	Offset  int
	Limit   int
	Columns []string
	Where   *query.Where
	OrderBy []string
	GroupBy []string
}

// DefaultFindOptions returns the defaults applied to every select.
func DefaultFindOptions() FindOptions {
	return FindOptions{Limit: 1000}
}

// MergeOver implements Merger.
func (f FindOptions) MergeOver(d FindOptions) FindOptions {
	out := d
	if f.Offset != 0 {
		out.Offset = f.Offset
	}
	if f.Limit != 0 {
		out.Limit = f.Limit
	}
	if len(f.Columns) > 0 {
		out.Columns = slices.Clone(f.Columns)
	}
	if f.Where != nil {
		out.Where = f.Where
	}
	if len(f.OrderBy) > 0 {
		out.OrderBy = slices.Clone(f.OrderBy)
	}
	if len(f.GroupBy) > 0 {
		out.GroupBy = slices.Clone(f.GroupBy)
	}
	return out
}
