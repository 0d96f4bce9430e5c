// Package db opens and migrates the sqlite database backing scene and
// decomposition-run storage.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// Open opens (creating if necessary) the sqlite database at path without
// touching the schema. Callers that need tables run MigrateUp first.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// sqlite serializes writers; a single connection avoids SQLITE_BUSY
	// under concurrent tool invocations.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &DB{sqlDB}, nil
}
