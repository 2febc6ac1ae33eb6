// Package postgres implements store.Repository on PostgreSQL through a
// pgx connection pool. A BIGSERIAL seq column records first-insertion order
// and survives ON CONFLICT updates.
package postgres
