package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"metric-diary/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database holding the parameter registry, the
// selection mirror, persisted settings, the series cache and the refresh
// journal.
type DB struct {
	sql *sql.DB
}

func dbPath(dataDir string) string {
	if dataDir != "" {
		return filepath.Join(dataDir, "diary.db")
	}
	// Prefer working directory so the DB is stable across go run / go build.
	// Fall back to executable directory for deployed builds.
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "diary.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "diary.db")
}

// Open opens (or creates) the SQLite database under dataDir and runs
// migrations. An empty dataDir falls back to the working directory.
func Open(dataDir string) (*DB, error) {
	if dataDir != "" {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	path := dbPath(dataDir)
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	// Try to read current version
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS parameters (
				key           TEXT PRIMARY KEY,
				title         TEXT NOT NULL,
				polarity      TEXT NOT NULL DEFAULT 'negative',
				default_value INTEGER,
				description   TEXT NOT NULL DEFAULT '',
				active        INTEGER NOT NULL DEFAULT 1,
				position      INTEGER NOT NULL
			);

			CREATE TABLE IF NOT EXISTS selections (
				date       TEXT NOT NULL,
				param_key  TEXT NOT NULL REFERENCES parameters(key),
				value      INTEGER NOT NULL,
				sync_state TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (date, param_key)
			);
			CREATE INDEX IF NOT EXISTS idx_selections_date ON selections(date);

			CREATE TABLE IF NOT EXISTS settings (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);

			INSERT OR REPLACE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	if version < 2 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS series_cache (
				param_key TEXT NOT NULL,
				as_of     TEXT NOT NULL,
				date      TEXT NOT NULL,
				value     REAL,
				PRIMARY KEY (param_key, as_of, date)
			);

			CREATE TABLE IF NOT EXISTS series_cache_meta (
				param_key  TEXT NOT NULL,
				as_of      TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (param_key, as_of)
			);

			INSERT OR REPLACE INTO schema_version (version) VALUES (2);
		`)
		if err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
	}

	if version < 3 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS refresh_journal (
				id          TEXT PRIMARY KEY,
				as_of       TEXT NOT NULL,
				parameters  INTEGER NOT NULL,
				duration_ms INTEGER NOT NULL,
				created_at  TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_refresh_created ON refresh_journal(created_at);

			INSERT OR REPLACE INTO schema_version (version) VALUES (3);
		`)
		if err != nil {
			return fmt.Errorf("migration v3: %w", err)
		}
	}

	return nil
}
