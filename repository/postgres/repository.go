package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/viant/docstore/store"
	"github.com/viant/docstore/vector"
)

// DefaultTable is used when Config.Table is empty.
const DefaultTable = "docstore_documents"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config configures the PostgreSQL repository.
type Config struct {
	// DSN is a postgres:// connection string.
	DSN string

	// Table holds the documents; defaults to DefaultTable.
	Table string

	// MaxConns caps the pool size; 0 keeps the pgx default.
	MaxConns int32
}

// Repository persists documents in a PostgreSQL table.
type Repository struct {
	pool  *pgxpool.Pool
	table string
}

// New connects, pings and migrates.
func New(ctx context.Context, cfg Config) (*Repository, error) {
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("postgres: invalid table name %q", table)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: open pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	r := &Repository{pool: pool, table: table}
	if err := r.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return r, nil
}

func (r *Repository) migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	seq       BIGSERIAL,
	id        TEXT PRIMARY KEY,
	content   TEXT NOT NULL DEFAULT '',
	metadata  JSONB NOT NULL DEFAULT '{}',
	embedding BYTEA NOT NULL
)`, r.table))
	return err
}

// LoadAll returns every document ordered by seq.
func (r *Repository) LoadAll(ctx context.Context) ([]vector.Document, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT id, content, metadata::text, embedding FROM %s ORDER BY seq`, r.table))
	if err != nil {
		return nil, fmt.Errorf("postgres: query documents: %w", err)
	}
	defer rows.Close()

	var out []vector.Document
	for rows.Next() {
		var d vector.Document
		var meta string
		var blob []byte
		if err := rows.Scan(&d.ID, &d.Content, &meta, &blob); err != nil {
			return nil, fmt.Errorf("postgres: scan document: %w", err)
		}
		if d.Metadata, err = vector.DecodeMetadata(meta); err != nil {
			return nil, fmt.Errorf("postgres: document %q: %w", d.ID, err)
		}
		if d.Embedding, err = vector.DecodeEmbedding(blob); err != nil {
			return nil, fmt.Errorf("postgres: document %q: %w", d.ID, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Save upserts a document; the conflict branch leaves seq untouched.
func (r *Repository) Save(ctx context.Context, doc vector.Document) error {
	meta, err := vector.EncodeMetadata(doc.Metadata)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, content, metadata, embedding)
		VALUES ($1, $2, $3::jsonb, $4)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding`, r.table),
		doc.ID, doc.Content, meta, vector.EncodeEmbedding(doc.Embedding))
	if err != nil {
		return fmt.Errorf("postgres: upsert document: %w", err)
	}
	return nil
}

// Delete removes a document by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table), id); err != nil {
		return fmt.Errorf("postgres: delete document: %w", err)
	}
	return nil
}

// Close closes the pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

var _ store.Repository = (*Repository)(nil)
