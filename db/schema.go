// ABOUTME: Database schema definitions
// ABOUTME: Handles SQLite table creation for the in-memory state container
package db

import (
	"database/sql"
)

// Company ids are not foreign keys on purpose: deleting a company leaves its
// communications in place and readers filter them out.
const schema = `
CREATE TABLE IF NOT EXISTS companies (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	location TEXT,
	linkedin_profile TEXT,
	emails TEXT NOT NULL DEFAULT '[]',
	phone_numbers TEXT NOT NULL DEFAULT '[]',
	comments TEXT,
	periodicity INTEGER NOT NULL CHECK(periodicity >= 1),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name);

CREATE TABLE IF NOT EXISTS communications (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL,
	type TEXT NOT NULL CHECK(type IN ('LinkedIn Post', 'LinkedIn Message', 'Email', 'Phone Call', 'Other')),
	date TEXT NOT NULL,
	notes TEXT
);

CREATE INDEX IF NOT EXISTS idx_communications_company_id ON communications(company_id);
CREATE INDEX IF NOT EXISTS idx_communications_date ON communications(date DESC);

CREATE TABLE IF NOT EXISTS communication_methods (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	sequence INTEGER NOT NULL,
	is_mandatory INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_communication_methods_sequence ON communication_methods(sequence);

CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL CHECK(kind IN ('overdue', 'due', 'info')),
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	company_id TEXT,
	is_read INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	position INTEGER NOT NULL DEFAULT 0
);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
