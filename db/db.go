// ABOUTME: In-memory state container backed by SQLite
// ABOUTME: Opens a private :memory: database holding one session's companies and communications
package db

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// OpenDatabase opens a fresh in-memory database with the schema applied.
// Nothing written here outlives the returned handle.
func OpenDatabase() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, err
	}

	// Every pooled connection to :memory: is its own database, so keep exactly one alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
