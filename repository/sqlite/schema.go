package sqlite

import (
	"context"
	"database/sql"
)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
    id        TEXT PRIMARY KEY,
    content   TEXT NOT NULL DEFAULT '',
    meta      TEXT NOT NULL DEFAULT '{}',
    embedding BLOB NOT NULL
);
`

// EnsureSchema creates the documents table in the provided database if it
// does not already exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, documentsSchema)
	return err
}
