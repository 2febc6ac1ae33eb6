package vector

import (
	"errors"
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	c := []float32{1, 0}
	d := []float32{-2, 0}

	// Orthogonal vectors -> similarity 0
	if sim, err := CosineSimilarity(a, b); err != nil || sim != 0 {
		t.Fatalf("CosineSimilarity(a,b) = %v, %v; want 0, nil", sim, err)
	}

	// Identical vectors -> similarity 1
	if sim, err := CosineSimilarity(a, c); err != nil || sim != 1 {
		t.Fatalf("CosineSimilarity(a,c) = %v, %v; want 1, nil", sim, err)
	}

	// Opposite direction, different magnitude -> similarity -1
	if sim, err := CosineSimilarity(a, d); err != nil || sim != -1 {
		t.Fatalf("CosineSimilarity(a,d) = %v, %v; want -1, nil", sim, err)
	}
}

func TestCosineSimilarity_Errors(t *testing.T) {
	if _, err := CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("mismatched lengths: err = %v, want ErrDimensionMismatch", err)
	}
	if _, err := CosineSimilarity(nil, nil); !errors.Is(err, ErrEmptyVector) {
		t.Fatalf("empty vectors: err = %v, want ErrEmptyVector", err)
	}
	if _, err := CosineSimilarity([]float32{0, 0}, []float32{1, 0}); !errors.Is(err, ErrZeroVector) {
		t.Fatalf("zero vector: err = %v, want ErrZeroVector", err)
	}
}

func TestCosineSimilarityWithNorms_Clamped(t *testing.T) {
	v := []float32{0.1, 0.2, 0.3}
	n := Norm(v)
	// Pass a slightly smaller norm to push the raw ratio above 1.
	sim := CosineSimilarityWithNorms(v, n*0.999999, v, n)
	if sim != 1 {
		t.Fatalf("CosineSimilarityWithNorms = %v, want clamped 1", sim)
	}
}

func TestNorm(t *testing.T) {
	if got := Norm([]float32{3, 4}); math.Abs(got-5) > 1e-12 {
		t.Fatalf("Norm(3,4) = %v, want 5", got)
	}
	if got := Norm(nil); got != 0 {
		t.Fatalf("Norm(nil) = %v, want 0", got)
	}
}
