package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/pgmodel"
	"github.com/syssam/pgmodel/query"
	"github.com/syssam/pgmodel/schema"
)

func messages(errs []*schema.ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

func TestValidateTable(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		tables, err := schema.Parse([]byte(usersYAML))
		require.NoError(t, err)
		result := schema.ValidateTable(tables[0])
		assert.False(t, result.HasErrors(), result.String())
		assert.False(t, result.HasWarnings(), result.String())
		assert.Equal(t, "No issues found", result.String())
	})

	t.Run("Errors", func(t *testing.T) {
		table := &schema.Table{
			Name:   "users",
			Config: &pgmodel.Config{Paranoid: true},
			Columns: pgmodel.ColumnSpecs{
				{Name: "id", SQL: "@name integer"},
				{Name: "name", SQL: "@name text"},
				{Name: "title", SQL: "name varchar(10)"},
				{Name: "empty", SQL: "  "},
			},
			ForeignKeys: []query.ForeignKey{
				{Column: "team_id", References: query.References{Table: "teams", Column: "id"}},
				{Column: "name"},
			},
		}
		result := schema.ValidateTable(table)
		assert.ElementsMatch(t, []string{
			"users: paranoid requires timestamps",
			"users.id: column name is reserved for the primary key or a timestamp",
			"users.title: duplicate column name",
			"users.empty: column has no definition",
			`users.team_id: foreign key references non-existent column "team_id"`,
			"users.name: foreign key has no referenced table or column",
		}, messages(result.Errors))
		assert.Contains(t, result.String(), "Errors:\n  - ")
	})

	t.Run("Warnings", func(t *testing.T) {
		table := &schema.Table{
			Name:   "users",
			Config: &pgmodel.Config{PKType: "bigserial"},
			Columns: pgmodel.ColumnSpecs{
				{Name: "flag", SQL: "@name"},
				{Name: "team", SQL: "@name text"},
			},
			ForeignKeys: []query.ForeignKey{
				{Column: "team", References: query.References{Table: "teams", Column: "id"}},
			},
		}
		result := schema.ValidateTable(table)
		assert.False(t, result.HasErrors(), result.String())
		assert.ElementsMatch(t, []string{
			`users.id: primary key type "bigserial" is not checked by the model`,
			"users.flag: column has no data type",
			"users.team: foreign key columns must be integer columns to be added",
		}, messages(result.Warnings))
	})

	t.Run("NoColumns", func(t *testing.T) {
		result := schema.ValidateTable(&schema.Table{})
		assert.Equal(t, []string{"<unnamed>: table has no name"}, messages(result.Errors))
		assert.Len(t, result.Warnings, 1)
	})
}

func TestValidateSchema(t *testing.T) {
	teams := &schema.Table{Name: "teams", Columns: pgmodel.ColumnSpecs{{Name: "title", SQL: "@name text"}}}
	users := &schema.Table{
		Name:    "users",
		Columns: pgmodel.ColumnSpecs{{Name: "team_id", SQL: "@name integer"}, {Name: "org_id", SQL: "@name integer"}},
		ForeignKeys: []query.ForeignKey{
			{Column: "team_id", References: query.References{Table: "teams", Column: "id"}},
			{Column: "org_id", References: query.References{Table: "orgs", Column: "id"}},
		},
	}

	result := schema.ValidateSchema([]*schema.Table{teams, users, teams})
	assert.Equal(t, []string{"teams: duplicate table name"}, messages(result.Errors))
	assert.Equal(t, []string{`users.org_id: foreign key references table "orgs" not declared in this schema`}, messages(result.Warnings))
}
