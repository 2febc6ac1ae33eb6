// Package sqlite implements store.Repository on a SQLite database opened
// through the engine package. Embeddings are stored as little-endian float32
// BLOBs and metadata as JSON text; LoadAll returns documents in rowid order,
// which upserts preserve.
package sqlite
