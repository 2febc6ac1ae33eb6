package rank

import (
	"container/heap"
	"sort"

	"github.com/viant/docstore/vector"
)

// Candidate is a scoring input.
type Candidate struct {
	ID        string
	Seq       uint64 // tiebreaker; lower ranks first on equal scores
	Embedding []float32
	Norm      float64 // precomputed Euclidean norm; 0 means compute it
}

// Scored is a ranked candidate. Index is the candidate's position in the
// slice given to TopK.
type Scored struct {
	Index int
	ID    string
	Seq   uint64
	Score float64
}

// Less reports whether a ranks strictly before b.
func Less(a, b Scored) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Seq < b.Seq
}

// TopK scores every candidate once and returns the k best in ranking order.
// Extra memory is O(k). The query must be non-zero and have the same length
// as every candidate embedding; the store validates both before calling.
func TopK(query []float32, candidates []Candidate, k int) []Scored {
	if k <= 0 || len(candidates) == 0 {
		return []Scored{}
	}
	if k > len(candidates) {
		k = len(candidates)
	}
	qn := vector.Norm(query)
	h := make(worstFirst, 0, k)
	for i := range candidates {
		c := &candidates[i]
		cn := c.Norm
		if cn == 0 {
			cn = vector.Norm(c.Embedding)
		}
		s := Scored{Index: i, ID: c.ID, Seq: c.Seq, Score: vector.CosineSimilarityWithNorms(query, qn, c.Embedding, cn)}
		if len(h) < k {
			heap.Push(&h, s)
			continue
		}
		if Less(s, h[0]) {
			h[0] = s
			heap.Fix(&h, 0)
		}
	}
	out := []Scored(h)
	sort.Slice(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}

// worstFirst is a min-heap in ranking terms: the root is the candidate that
// ranks last among those kept.
type worstFirst []Scored

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return Less(h[j], h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *worstFirst) Push(x interface{}) {
	*h = append(*h, x.(Scored))
}

func (h *worstFirst) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
