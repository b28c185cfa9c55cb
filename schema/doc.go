// Package schema loads table declarations from YAML files and checks them
// for mistakes before any statement is sent to the database.
//
// A file declares one table:
//
//	table: users
//	config:
//	  prefix: app_
//	  timestamps: true
//	  paranoid: true
//	columns:
//	  name:
//	    sql: "@name text NOT NULL"
//	  team_id:
//	    sql: "@name integer"
//	foreignKeys:
//	  - column: team_id
//	    references: {table: app_teams, column: id}
//	    onDelete: CASCADE
//
// or several under a top level "tables" list. Columns keep the order they
// are written in.
package schema
