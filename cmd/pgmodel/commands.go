package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/pgmodel/query"
	"github.com/syssam/pgmodel/schema"
)

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pgmodel",
		Short:         "Apply YAML table declarations to PostgreSQL",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&a.dsn, "dsn", "d", "", "Database connection string (default $DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&a.driver, "driver", "postgres", "database/sql driver: postgres (lib/pq) or pgx")
	rootCmd.PersistentFlags().StringVarP(&a.schemaPath, "schema", "s", "", "Path to the schema file")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Log every statement")
	rootCmd.PersistentFlags().BoolVar(&a.stats, "stats", false, "Print statement statistics on exit")

	rootCmd.AddCommand(
		validateCmd(a),
		defineCmd(a),
		createCmd(a),
		alterCmd(a),
		dropCmd(a),
		existsCmd(a),
		countCmd(a),
	)
	return rootCmd
}

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the schema file without connecting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.schemaPath == "" {
				return fmt.Errorf("no schema file given (use --schema)")
			}
			tables, err := schema.Load(a.schemaPath)
			if err != nil {
				return err
			}
			result := schema.ValidateSchema(tables)
			fmt.Fprintln(a.out, result)
			if result.HasErrors() {
				return fmt.Errorf("%d schema errors", len(result.Errors))
			}
			return nil
		},
	}
}

func defineCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "define",
		Short: "Create missing tables and alter existing ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(func(s *session) error {
				for i, m := range s.models {
					if err := m.Define(cmd.Context(), s.tables[i].Columns...); err != nil {
						return err
					}
					fmt.Fprintf(a.out, "%s: defined\n", m.TableName())
				}
				return addForeignKeys(cmd, s)
			})
		},
	}
}

func createCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create the declared tables if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(func(s *session) error {
				for _, m := range s.models {
					if err := m.Table().Create(cmd.Context()); err != nil {
						return err
					}
					fmt.Fprintf(a.out, "%s: created\n", m.TableName())
				}
				return addForeignKeys(cmd, s)
			})
		},
	}
}

func addForeignKeys(cmd *cobra.Command, s *session) error {
	for i, m := range s.models {
		for _, fk := range s.tables[i].ForeignKeys {
			if err := m.AddForeignKey(cmd.Context(), fk); err != nil {
				return err
			}
		}
	}
	return nil
}

func alterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "alter",
		Short: "Add missing columns to tables declared with alter: true",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(func(s *session) error {
				for _, m := range s.models {
					changed, err := m.Table().Alter(cmd.Context())
					if err != nil {
						return err
					}
					state := "unchanged"
					if changed {
						state = "altered"
					}
					fmt.Fprintf(a.out, "%s: %s\n", m.TableName(), state)
				}
				return nil
			})
		},
	}
}

func dropCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drop",
		Short: "Drop the declared tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(func(s *session) error {
				// Reverse order so referencing tables go first.
				for i := len(s.models) - 1; i >= 0; i-- {
					m := s.models[i]
					if err := m.Table().Drop(cmd.Context()); err != nil {
						return err
					}
					fmt.Fprintf(a.out, "%s: dropped\n", m.TableName())
				}
				return nil
			})
		},
	}
}

func existsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exists",
		Short: "Report whether each declared table exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(func(s *session) error {
				for _, m := range s.models {
					ok, err := m.Table().Exists(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(a.out, "%s: %t\n", m.TableName(), ok)
				}
				return nil
			})
		},
	}
}

func countCmd(a *app) *cobra.Command {
	var where string
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count the rows of each declared table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(func(s *session) error {
				for _, m := range s.models {
					n, err := m.Count(cmd.Context(), whereClause(where))
					if err != nil {
						return err
					}
					fmt.Fprintf(a.out, "%s: %d\n", m.TableName(), n)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&where, "where", "", "Raw predicate without parameters, e.g. \"age > 18\"")
	return cmd
}

func whereClause(predicate string) *query.Where {
	if predicate == "" {
		return nil
	}
	return &query.Where{SQL: predicate}
}
