package sqlite

import "database/sql"

// schema holds the SQL statements that set up the database.
// client_name and total are copies of document fields for ad-hoc queries;
// document is authoritative.
const schema = `
CREATE TABLE IF NOT EXISTS invoices (
    invoice_number TEXT PRIMARY KEY,
    client_name TEXT NOT NULL,
    total REAL NOT NULL,
    document TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_invoices_client_name ON invoices(client_name);
`

func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
