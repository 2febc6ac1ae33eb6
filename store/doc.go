// Package store implements the in-memory semantic document store: a
// process-wide collection of embedded documents supporting upsert, remove
// and metadata-filtered top-k cosine search.
//
// A Store is safe for concurrent use. Mutations are atomic per document and
// linearizable with respect to searches; every search scores one coherent
// snapshot of the collection. When a Repository is configured, mutations are
// persisted before they become visible in memory and Load repopulates the
// store at startup.
package store
