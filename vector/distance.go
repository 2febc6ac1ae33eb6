package vector

import (
	"fmt"
	"math"
)

// CosineSimilarity computes the cosine similarity between two vectors. It
// returns an error if the vectors have different lengths or if either vector
// has zero magnitude.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector: cosine similarity %w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("vector: cosine similarity on %w", ErrEmptyVector)
	}
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0, fmt.Errorf("vector: cosine similarity with %w", ErrZeroVector)
	}
	return CosineSimilarityWithNorms(a, na, b, nb), nil
}

// CosineSimilarityWithNorms computes dot(a,b)/(na*nb) using precomputed
// Euclidean norms. Callers guarantee equal lengths and non-zero norms. The
// result is clamped to [-1, 1] to absorb rounding.
func CosineSimilarityWithNorms(a []float32, na float64, b []float32, nb float64) float64 {
	s := Dot(a, b) / (na * nb)
	switch {
	case s > 1:
		return 1
	case s < -1:
		return -1
	}
	return s
}

// Dot returns the float64 dot product of two equal-length vectors.
func Dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

// Norm returns the Euclidean length of v.
func Norm(v []float32) float64 {
	return math.Sqrt(Dot(v, v))
}
