package index

import "github.com/viant/docstore/rank"

// Index selects the k best candidates for a query.
//
// The store passes the filtered snapshot of the collection on every search,
// with a non-zero query of the store's dimension. Implementations return at
// most k results in rank.Less order, each carrying the Index of its
// candidate in the given slice. Query must not modify candidates and may be
// called concurrently.
type Index interface {
	Query(query []float32, candidates []rank.Candidate, k int) []rank.Scored
}
