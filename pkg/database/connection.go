package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// ConnectDB opens the local task cache. For SQLite, dsn is a file path
// which is created along with its directory if needed.
func ConnectDB(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverSQLite:
		// Expand tilde to home directory if present
		if strings.HasPrefix(dsn, "~") {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			dsn = homeDir + dsn[1:]
		}

		dbDir := filepath.Dir(dsn)
		if dbDir != "." {
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				return nil, err
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported cache driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// EnsureSchema creates the cache table if it doesn't exist
func EnsureSchema(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			frequency TEXT NOT NULL,
			custom_frequency_days INTEGER,
			start_date TEXT,
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			last_completed TEXT,
			do_next_by TEXT
		)
	`)
	return err
}
