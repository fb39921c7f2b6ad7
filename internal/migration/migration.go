// Package migration embeds the SQL schema and applies it at startup so a
// fresh postgres database is usable without an external migration step.
package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

// RunMigrations brings the schema up to date. Re-running against an
// already-migrated database is a no-op.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration requires a database handle")
	}

	dir, err := fs.Sub(schemaFS, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded schema: %w", err)
	}
	source, err := iofs.New(dir, ".")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrator: %w", err)
	}

	// migrator.Close would close the shared *sql.DB, so skip it.
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
