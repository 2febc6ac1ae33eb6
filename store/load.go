package store

import (
	"context"
	"fmt"

	"github.com/viant/docstore/vector"
)

// Load repopulates the store from the repository, assigning insertion
// sequence numbers in the order the repository returns documents. Every
// document is validated exactly as Upsert would; a single invalid document
// aborts the load and leaves the store untouched. Loaded documents are not
// written back. Without a repository Load is a no-op.
func (s *Store) Load(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, nil
	}
	docs, err := s.repo.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("store: load documents: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	dim := s.dim
	prepared := make([]vector.Document, len(docs))
	for i, doc := range docs {
		if err := doc.Validate(); err != nil {
			return 0, fmt.Errorf("store: load document %d: %w", i, withOp(err, "load"))
		}
		if dim == 0 {
			dim = len(doc.Embedding)
		}
		if len(doc.Embedding) != dim {
			return 0, fmt.Errorf("store: load document %d: %w", i, &vector.ValidationError{
				Op: "load", Field: "embedding", ID: doc.ID, Want: dim, Got: len(doc.Embedding), Err: vector.ErrDimensionMismatch,
			})
		}
		prepared[i] = doc.Clone()
	}

	s.mu.Lock()
	s.dim = dim
	for _, doc := range prepared {
		s.installLocked(doc)
	}
	total := len(s.entries)
	s.mu.Unlock()

	s.logger.Info("documents loaded", "loaded", len(prepared), "total", total, "dimension", dim)
	return len(prepared), nil
}
