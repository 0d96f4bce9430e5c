package db

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrateUp applies all pending migrations from migrationsDir. Returns nil
// when the schema is already current.
func (db *DB) MigrateUp(migrationsDir string) error {
	m, err := db.newMigrate(migrationsDir)
	if err != nil {
		return err
	}
	// The migrate instance is not closed: closing it would close the
	// underlying database connection.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func (db *DB) MigrateDown(migrationsDir string) error {
	m, err := db.newMigrate(migrationsDir)
	if err != nil {
		return err
	}

	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}

// MigrateVersion reports the current schema version and dirty state.
// Returns 0, false when no migrations have been applied.
func (db *DB) MigrateVersion(migrationsDir string) (version uint, dirty bool, err error) {
	m, err := db.newMigrate(migrationsDir)
	if err != nil {
		return 0, false, err
	}

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (db *DB) newMigrate(migrationsDir string) (*migrate.Migrate, error) {
	absPath, err := filepath.Abs(migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("resolve migrations dir: %w", err)
	}

	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("create sqlite migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", absPath), "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}
	return m, nil
}

type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool { return false }
