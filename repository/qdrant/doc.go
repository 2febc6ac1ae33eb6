// Package qdrant implements store.Repository on a Qdrant collection. Point
// IDs are name-based UUIDs derived from document IDs; the payload carries
// the document ID, content, metadata and a seq used to restore insertion
// order on load.
package qdrant
