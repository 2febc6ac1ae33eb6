package bruteforce

import (
	"github.com/viant/docstore/index"
	"github.com/viant/docstore/rank"
)

// Index is an exact, stateless index.
type Index struct{}

// New returns a brute-force index.
func New() *Index { return &Index{} }

// Query returns the top k candidates by cosine similarity, exact ties going
// to the lower sequence number.
func (*Index) Query(query []float32, candidates []rank.Candidate, k int) []rank.Scored {
	return rank.TopK(query, candidates, k)
}

var _ index.Index = (*Index)(nil)
