package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
)

// createSchema creates the parent and child tables plus their indices.
// Every statement is idempotent, so re-running after a Reset or on an
// existing file is harmless. AUTOINCREMENT keeps identities monotonic:
// a deleted row's id is never handed out again.
func createSchema(ctx context.Context, db *sql.DB) error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS people (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		phone TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS addresses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		person_id INTEGER NOT NULL,
		street TEXT NOT NULL,
		city TEXT NOT NULL,
		region TEXT,
		postal_code TEXT,
		country TEXT,
		is_primary INTEGER NOT NULL DEFAULT 0,
		kind TEXT NOT NULL DEFAULT 'home',
		FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS email_addresses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		person_id INTEGER NOT NULL,
		email TEXT NOT NULL,
		is_primary INTEGER NOT NULL DEFAULT 0,
		kind TEXT NOT NULL DEFAULT 'personal',
		FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_people_first_name ON people(first_name);
	CREATE INDEX IF NOT EXISTS idx_people_last_name ON people(last_name);
	CREATE INDEX IF NOT EXISTS idx_people_name ON people(first_name, last_name);

	CREATE INDEX IF NOT EXISTS idx_addresses_person_id ON addresses(person_id);
	CREATE INDEX IF NOT EXISTS idx_addresses_kind ON addresses(kind);
	CREATE INDEX IF NOT EXISTS idx_addresses_is_primary ON addresses(is_primary);
	CREATE INDEX IF NOT EXISTS idx_addresses_person_primary ON addresses(person_id, is_primary);
	CREATE INDEX IF NOT EXISTS idx_addresses_person_kind ON addresses(person_id, kind);

	CREATE INDEX IF NOT EXISTS idx_email_addresses_person_id ON email_addresses(person_id);
	CREATE INDEX IF NOT EXISTS idx_email_addresses_kind ON email_addresses(kind);
	CREATE INDEX IF NOT EXISTS idx_email_addresses_is_primary ON email_addresses(is_primary);
	CREATE INDEX IF NOT EXISTS idx_email_addresses_person_primary ON email_addresses(person_id, is_primary);
	CREATE INDEX IF NOT EXISTS idx_email_addresses_person_kind ON email_addresses(person_id, kind);
	CREATE INDEX IF NOT EXISTS idx_email_addresses_email ON email_addresses(email);
	`

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}
