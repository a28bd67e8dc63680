package main

import (
	"context"
	"log/slog"

	"reportshare/internal/infra/persistence/postgres"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				var (
					db     *gorm.DB
					logger *slog.Logger
				)

				return withApp(cmd.Context(), func(ctx context.Context) error {
					return postgres.Migrate(ctx, db, logger)
				}, &db, &logger)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the state of every migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				var db *gorm.DB

				return withApp(cmd.Context(), func(ctx context.Context) error {
					return postgres.MigrationStatus(ctx, db)
				}, &db)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				var db *gorm.DB

				return withApp(cmd.Context(), func(ctx context.Context) error {
					return postgres.Rollback(ctx, db)
				}, &db)
			},
		},
	)

	return cmd
}
