package postgres

import (
	"context"
	"log/slog"

	"reportshare/internal/errors"
	"reportshare/internal/infra/persistence/migrations"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

const migrationDialect = "postgres"

// Migrate applies every pending embedded schema migration.
func Migrate(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	if err := prepareGoose(); err != nil {
		return err
	}

	before, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return errors.Wrap(err, "failed to read schema version")
	}

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return errors.Wrap(err, "failed to apply migrations")
	}

	after, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return errors.Wrap(err, "failed to read schema version")
	}

	logger.Info("Schema migrations applied",
		slog.Int64("from_version", before),
		slog.Int64("to_version", after),
	)

	return nil
}

// MigrationStatus logs the applied state of every embedded migration through goose.
func MigrationStatus(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	if err := prepareGoose(); err != nil {
		return err
	}

	return errors.WithStack(goose.StatusContext(ctx, sqlDB, "."))
}

// Rollback reverts the most recently applied migration.
func Rollback(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	if err := prepareGoose(); err != nil {
		return err
	}

	return errors.WithStack(goose.DownContext(ctx, sqlDB, "."))
}

func prepareGoose() error {
	goose.SetBaseFS(migrations.FS)

	return errors.Wrap(goose.SetDialect(migrationDialect), "failed to set migration dialect")
}
