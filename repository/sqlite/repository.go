package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/docstore/engine"
	"github.com/viant/docstore/store"
	"github.com/viant/docstore/vector"
)

// Repository persists documents in a SQLite documents table.
type Repository struct {
	db     *sql.DB
	ownsDB bool
}

// New wraps an open database and ensures the schema exists. The caller keeps
// ownership of db; Close does not close it.
func New(ctx context.Context, db *sql.DB) (*Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite: db is nil")
	}
	if err := EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("sqlite: ensure schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// Open opens (creating if needed) the database at path and returns a
// Repository that owns it.
func Open(ctx context.Context, path string) (*Repository, error) {
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite: create data directory: %w", err)
			}
		}
	}
	db, err := engine.Open(path)
	if err != nil {
		return nil, err
	}
	repo, err := New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	repo.ownsDB = true
	return repo, nil
}

// LoadAll returns every document in first-insertion order.
func (r *Repository) LoadAll(ctx context.Context) ([]vector.Document, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, content, meta, embedding FROM documents ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query documents: %w", err)
	}
	defer rows.Close()

	var out []vector.Document
	for rows.Next() {
		var d vector.Document
		var meta string
		var blob []byte
		if err := rows.Scan(&d.ID, &d.Content, &meta, &blob); err != nil {
			return nil, fmt.Errorf("sqlite: scan document: %w", err)
		}
		if d.Metadata, err = vector.DecodeMetadata(meta); err != nil {
			return nil, fmt.Errorf("sqlite: document %q: %w", d.ID, err)
		}
		if d.Embedding, err = vector.DecodeEmbedding(blob); err != nil {
			return nil, fmt.Errorf("sqlite: document %q: %w", d.ID, err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Save inserts or updates a document. ON CONFLICT DO UPDATE keeps the
// original rowid, so a replaced document keeps its load position.
func (r *Repository) Save(ctx context.Context, doc vector.Document) error {
	meta, err := vector.EncodeMetadata(doc.Metadata)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents(id, content, meta, embedding)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  content = excluded.content,
  meta = excluded.meta,
  embedding = excluded.embedding`,
		doc.ID, doc.Content, meta, vector.EncodeEmbedding(doc.Embedding))
	if err != nil {
		return fmt.Errorf("sqlite: upsert document: %w", err)
	}
	return nil
}

// Delete removes a document by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: delete document: %w", err)
	}
	return nil
}

// Close closes the database when the repository opened it.
func (r *Repository) Close() error {
	if !r.ownsDB {
		return nil
	}
	return r.db.Close()
}

// Ensure Repository satisfies the store.Repository interface.
var _ store.Repository = (*Repository)(nil)
