package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DefaultPath returns the path to the single shared database
func DefaultPath() string {
	return filepath.Join("data", "marine-sessions.db")
}

// Open opens (creating if needed) the SQLite database at path and ensures
// the schema exists.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the spots and notification_log tables. It is safe to
// call on every start.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS spots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			tide_harbour TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_spots_name ON spots(name);
	`)
	if err != nil {
		return fmt.Errorf("creating spots table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS notification_log (
			id TEXT PRIMARY KEY,
			key TEXT NOT NULL,
			sent_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_notification_log_key ON notification_log(key, sent_at);
	`)
	if err != nil {
		return fmt.Errorf("creating notification_log table: %w", err)
	}

	return nil
}
