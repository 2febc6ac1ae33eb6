package store

import (
	"context"
	"log/slog"

	"github.com/viant/docstore/index"
	"github.com/viant/docstore/vector"
)

// Repository is the durable backing store the Store is populated from and
// writes through to. Implementations live under repository/.
type Repository interface {
	// LoadAll returns every persisted document in first-insertion order.
	LoadAll(ctx context.Context) ([]vector.Document, error)

	// Save inserts or replaces a document by id. Replacing keeps the
	// document's original position in LoadAll order.
	Save(ctx context.Context, doc vector.Document) error

	// Delete removes a document by id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases resources.
	Close() error
}

// Option configures a Store.
type Option func(*Store)

// WithDimension fixes the embedding dimensionality up front. Without it the
// first stored document establishes the dimension.
func WithDimension(dim int) Option {
	return func(s *Store) {
		if dim > 0 {
			s.dim = dim
		}
	}
}

// WithRepository makes the store write mutations through to repo and
// enables Load.
func WithRepository(repo Repository) Option {
	return func(s *Store) {
		s.repo = repo
	}
}

// WithIndex replaces the exact brute-force index used by Search. Nil keeps
// the default.
func WithIndex(idx index.Index) Option {
	return func(s *Store) {
		if idx != nil {
			s.index = idx
		}
	}
}

// WithLogger sets the logger. Nil keeps the default, which discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}
