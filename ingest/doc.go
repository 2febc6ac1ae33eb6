// Package ingest loads content items from YAML or JSON files, embeds them
// concurrently and upserts the resulting documents into a store.
package ingest
