package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/iota-uz/hr-people/modules/people"
	"github.com/iota-uz/hr-people/pkg/configuration"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the people schema migrations",
	}
	cmd.AddCommand(
		newMigrateStepCmd("up", "Apply all pending migrations", goose.UpContext),
		newMigrateStepCmd("down", "Roll back the latest migration", goose.DownContext),
		newMigrateStepCmd("status", "Print migration status", goose.StatusContext),
	)
	return cmd
}

type migrateFunc func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error

func newMigrateStepCmd(use, short string, run migrateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			defer conf.Unload()

			pool, err := connectDB(cmd.Context(), conf)
			if err != nil {
				return err
			}
			defer pool.Close()

			db := stdlib.OpenDBFromPool(pool)
			defer db.Close()

			goose.SetBaseFS(people.MigrationFiles)
			defer goose.SetBaseFS(nil)
			if err := goose.SetDialect("postgres"); err != nil {
				return err
			}
			if err := run(cmd.Context(), db, people.MigrationDir); err != nil {
				return fmt.Errorf("migrate %s: %w", use, err)
			}
			return nil
		},
	}
}
