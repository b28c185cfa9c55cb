package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/pgmodel"
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Table   string
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of schema validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString("Errors:\n")
		for _, e := range r.Errors {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			sb.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString("  - ")
			sb.WriteString(w.Error())
			sb.WriteString("\n")
		}
	}
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

func (r *ValidationResult) errorf(table, column, format string, args ...any) {
	r.Errors = append(r.Errors, &ValidationError{Table: table, Column: column, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warnf(table, column, format string, args ...any) {
	r.Warnings = append(r.Warnings, &ValidationError{Table: table, Column: column, Message: fmt.Sprintf(format, args...)})
}

// ValidateTable validates a single table definition.
func ValidateTable(t *Table) *ValidationResult {
	result := &ValidationResult{}
	name := t.FullName()
	cfg := t.EffectiveConfig()

	if t.Name == "" {
		result.errorf("<unnamed>", "", "table has no name")
	}
	if len(t.Columns) == 0 {
		result.warnf(name, "", "table has no columns besides the primary key")
	}
	if cfg.PKType != pgmodel.PKSerial && cfg.PKType != pgmodel.PKUUID {
		result.warnf(name, cfg.PKName, "primary key type %q is not checked by the model", cfg.PKType)
	}
	if cfg.Paranoid && !cfg.Timestamps.Enabled {
		result.errorf(name, "", "paranoid requires timestamps")
	}

	// Reserved names are compared by the name the column gets in the table.
	reserved := []string{cfg.PKName}
	if cfg.Timestamps.Enabled {
		reserved = append(reserved, cfg.Timestamps.CreatedAt, cfg.Timestamps.UpdatedAt)
		if cfg.Paranoid {
			reserved = append(reserved, cfg.Timestamps.DeletedAt)
		}
	}

	seen := make(map[string]bool)
	types := make(map[string]string)
	for _, spec := range t.Columns {
		if strings.TrimSpace(spec.SQL) == "" {
			result.errorf(name, spec.Name, "column has no definition")
			continue
		}
		col := spec.Column()
		inTable := col.NameInTable()
		if seen[inTable] {
			result.errorf(name, spec.Name, "duplicate column name")
		}
		seen[inTable] = true
		types[inTable] = strings.ToLower(col.DataType())
		if slices.Contains(reserved, inTable) {
			result.errorf(name, spec.Name, "column name is reserved for the primary key or a timestamp")
		}
		if col.DataType() == "" {
			result.warnf(name, spec.Name, "column has no data type")
		}
	}

	for _, fk := range t.ForeignKeys {
		switch {
		case fk.References.Table == "" || fk.References.Column == "":
			result.errorf(name, fk.Column, "foreign key has no referenced table or column")
		case !seen[fk.Column] && fk.Column != cfg.PKName:
			result.errorf(name, fk.Column, "foreign key references non-existent column %q", fk.Column)
		case types[fk.Column] != "integer" && types[fk.Column] != "int":
			result.warnf(name, fk.Column, "foreign key columns must be integer columns to be added")
		}
	}
	return result
}

// ValidateSchema validates all tables in a schema.
func ValidateSchema(tables []*Table) *ValidationResult {
	result := &ValidationResult{}

	tableNames := make(map[string]bool)
	for _, t := range tables {
		name := t.FullName()
		if tableNames[name] {
			result.errorf(name, "", "duplicate table name")
		}
		tableNames[name] = true

		tableResult := ValidateTable(t)
		result.Errors = append(result.Errors, tableResult.Errors...)
		result.Warnings = append(result.Warnings, tableResult.Warnings...)
	}

	// References outside the file may already exist in the database.
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			if fk.References.Table != "" && !tableNames[fk.References.Table] {
				result.warnf(t.FullName(), fk.Column, "foreign key references table %q not declared in this schema", fk.References.Table)
			}
		}
	}
	return result
}
