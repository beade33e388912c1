package storage

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// A migration mutates the schema inside a transaction. Migrations are
// applied in order and each one must be safe to run on a database that
// already contains data.
type migration struct {
	version int
	name    string
	apply   func(tx *sql.Tx) error
}

var migrations = []migration{
	{version: 1, name: "baseline", apply: migrateBaseline},
}

// LatestSchemaVersion returns the version the schema reaches after all
// migrations have been applied.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the current schema version, 0 for a database
// that has never been migrated.
// PRE: db is a valid database connection
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}

	var version int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	return version, err
}

// MigrateDB brings the database schema up to the latest version. A file
// backup is taken before any migration runs so a failed upgrade can be
// rolled back by hand.
// PRE: db is open, dbPath is the on-disk path or ":memory:"
// POST: SchemaVersion(db) == LatestSchemaVersion()
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current >= LatestSchemaVersion() {
		return nil
	}

	if err := backupFile(dbPath); err != nil {
		return fmt.Errorf("failed to back up database: %w", err)
	}

	if _, err := db.Exec(
		"CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL DEFAULT (datetime('now')))"); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if err := m.apply(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		slog.Info("migration_applied", "version", m.version, "name", m.name)
	}

	return nil
}

// backupFile copies the database file aside before a migration.
// In-memory and missing files are skipped.
func backupFile(dbPath string) error {
	if dbPath == "" || dbPath == ":memory:" {
		return nil
	}
	src, err := os.Open(dbPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(dbPath + ".bak")
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// migrateBaseline creates the initial schema. Uses IF NOT EXISTS so a
// pre-migration database picks up version tracking without data loss.
func migrateBaseline(tx *sql.Tx) error {
	_, err := tx.Exec(baselineSchema)
	return err
}
