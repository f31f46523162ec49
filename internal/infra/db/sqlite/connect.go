package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Open creates (or opens) the database file and applies the schema.
// Used for local development and tests; postgres/mysql are the server
// backends and expect a pre-provisioned schema.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_loc=UTC")
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS tickets (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		created_at  DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS analysis_runs (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME NOT NULL,
		summary    TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ticket_analysis (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_run_id INTEGER NOT NULL REFERENCES analysis_runs(id),
		ticket_id       INTEGER NOT NULL REFERENCES tickets(id),
		category        TEXT NOT NULL,
		priority        TEXT NOT NULL,
		notes           TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_ticket_analysis_run ON ticket_analysis(analysis_run_id);
	`
	_, err := db.Exec(schema)
	return err
}
