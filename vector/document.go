package vector

import (
	"math"
)

// Document is a single unit of retrievable text.
type Document struct {
	// ID uniquely identifies the document within a store.
	ID string `json:"id" yaml:"id"`

	// Content is the text handed back to callers. The store never inspects it.
	Content string `json:"content" yaml:"content"`

	// Embedding is the vector representation of Content. All documents in a
	// store share the same length.
	Embedding []float32 `json:"embedding,omitempty" yaml:"embedding,omitempty"`

	// Metadata holds tags (subject, grade, topic, ...) used for exact-match
	// filtering. It never contributes to the score.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Clone returns a deep copy of d so that neither side can observe later
// mutations of the other's embedding or metadata.
func (d Document) Clone() Document {
	out := Document{ID: d.ID, Content: d.Content}
	if d.Embedding != nil {
		out.Embedding = append([]float32(nil), d.Embedding...)
	}
	if d.Metadata != nil {
		out.Metadata = make(map[string]string, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Match is a single search hit.
type Match struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"` // cosine similarity in [-1, 1]
}

// Filter restricts a search to documents whose metadata carries every
// key with an equal value. A nil or empty filter matches everything.
type Filter map[string]string

// Matches reports whether metadata satisfies every pair in f.
func (f Filter) Matches(metadata map[string]string) bool {
	for k, want := range f {
		got, ok := metadata[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Validate checks the parts of a document the store depends on: a non-empty
// id and a usable embedding. Dimensionality is checked by the store, which
// owns the expected length.
func (d Document) Validate() error {
	if d.ID == "" {
		return &ValidationError{Op: "validate", Field: "id", Err: ErrEmptyID}
	}
	if err := ValidateEmbedding(d.Embedding); err != nil {
		if ve, ok := err.(*ValidationError); ok {
			ve.ID = d.ID
		}
		return err
	}
	return nil
}

// ValidateEmbedding rejects empty, all-zero and non-finite vectors. Cosine
// similarity is undefined for all of them.
func ValidateEmbedding(vec []float32) error {
	if len(vec) == 0 {
		return &ValidationError{Op: "validate", Field: "embedding", Err: ErrEmptyVector}
	}
	zero := true
	for _, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &ValidationError{Op: "validate", Field: "embedding", Err: ErrNonFinite}
		}
		if v != 0 {
			zero = false
		}
	}
	if zero {
		return &ValidationError{Op: "validate", Field: "embedding", Err: ErrZeroVector}
	}
	return nil
}
