package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viant/docstore/index"
	"github.com/viant/docstore/index/bruteforce"
	"github.com/viant/docstore/rank"
	"github.com/viant/docstore/vector"
)

// Store holds the authoritative in-memory document collection.
type Store struct {
	// writeMu serializes mutations, persistence included, so that durable
	// order always equals in-memory order.
	writeMu sync.Mutex

	// mu guards the fields below. Writers hold it only for the swap.
	mu      sync.RWMutex
	dim     int
	nextSeq uint64
	entries map[string]*entry

	index  index.Index
	repo   Repository
	logger *slog.Logger
}

// entry is immutable once installed; replacing a document swaps the pointer.
type entry struct {
	doc  vector.Document
	seq  uint64
	norm float64
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*entry),
		index:   bruteforce.New(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert stores doc, replacing any document with the same id. It is the
// ingestion-facing name for Upsert and behaves identically.
func (s *Store) Insert(ctx context.Context, doc vector.Document) error {
	return s.upsert(ctx, "insert", doc)
}

// Upsert validates doc and installs it, replacing any document with the same
// id. A replaced document keeps its original insertion sequence number.
// On any error the store is left unchanged.
func (s *Store) Upsert(ctx context.Context, doc vector.Document) error {
	return s.upsert(ctx, "upsert", doc)
}

func (s *Store) upsert(ctx context.Context, op string, doc vector.Document) error {
	if err := doc.Validate(); err != nil {
		return withOp(err, op)
	}
	doc = doc.Clone()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// dim only changes under writeMu, so reading it here is safe.
	if s.dim != 0 && len(doc.Embedding) != s.dim {
		return &vector.ValidationError{Op: op, Field: "embedding", ID: doc.ID, Want: s.dim, Got: len(doc.Embedding), Err: vector.ErrDimensionMismatch}
	}
	if s.repo != nil {
		if err := s.repo.Save(ctx, doc); err != nil {
			return fmt.Errorf("store: save document %q: %w", doc.ID, err)
		}
	}

	s.mu.Lock()
	established := s.dim == 0
	if established {
		s.dim = len(doc.Embedding)
	}
	s.installLocked(doc)
	s.mu.Unlock()

	if established {
		s.logger.Debug("dimension established", "dimension", len(doc.Embedding), "id", doc.ID)
	}
	return nil
}

// installLocked puts doc into the collection. Callers hold mu for writing.
func (s *Store) installLocked(doc vector.Document) {
	e := &entry{doc: doc, norm: vector.Norm(doc.Embedding)}
	if prev, ok := s.entries[doc.ID]; ok {
		e.seq = prev.seq
	} else {
		s.nextSeq++
		e.seq = s.nextSeq
	}
	s.entries[doc.ID] = e
}

// Remove deletes the document with the given id. Removing an absent id is a
// no-op; only a repository failure produces an error.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.repo != nil {
		if err := s.repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("store: delete document %q: %w", id, err)
		}
	}

	s.mu.Lock()
	_, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()

	if ok {
		s.logger.Debug("document removed", "id", id)
	}
	return nil
}

// Search returns up to k documents matching filter, ordered by descending
// cosine similarity to query. Exact ties go to the earlier-inserted
// document. Selection goes through the configured index. The result is
// never nil; an empty slice means nothing matched.
func (s *Store) Search(query []float32, k int, filter vector.Filter) ([]vector.Match, error) {
	if k < 0 {
		return nil, &vector.ValidationError{Op: "search", Field: "k", Got: k, Err: vector.ErrNegativeK}
	}
	if err := vector.ValidateEmbedding(query); err != nil {
		return nil, withField(withOp(err, "search"), "query")
	}

	s.mu.RLock()
	if s.dim != 0 && len(query) != s.dim {
		dim := s.dim
		s.mu.RUnlock()
		return nil, &vector.ValidationError{Op: "search", Field: "query", Want: dim, Got: len(query), Err: vector.ErrDimensionMismatch}
	}
	if k == 0 || len(s.entries) == 0 {
		s.mu.RUnlock()
		return []vector.Match{}, nil
	}
	// Entries are immutable, so the pointers taken here form a consistent
	// snapshot that can be scored after the lock is released.
	picked := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		if filter.Matches(e.doc.Metadata) {
			picked = append(picked, e)
		}
	}
	s.mu.RUnlock()

	if len(picked) == 0 {
		return []vector.Match{}, nil
	}
	candidates := make([]rank.Candidate, len(picked))
	for i, e := range picked {
		candidates[i] = rank.Candidate{ID: e.doc.ID, Seq: e.seq, Embedding: e.doc.Embedding, Norm: e.norm}
	}
	top := s.index.Query(query, candidates, k)
	out := make([]vector.Match, len(top))
	for i, sc := range top {
		out[i] = vector.Match{Document: picked[sc.Index].doc.Clone(), Score: sc.Score}
	}
	return out, nil
}

// Get returns a copy of the document with the given id.
func (s *Store) Get(id string) (vector.Document, bool) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return vector.Document{}, false
	}
	return e.doc.Clone(), true
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Dimension returns the established embedding dimension, or 0 if none is
// established yet.
func (s *Store) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dim
}

// Close closes the repository, if any.
func (s *Store) Close() error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Close()
}

func withOp(err error, op string) error {
	if ve, ok := err.(*vector.ValidationError); ok {
		ve.Op = op
	}
	return err
}

func withField(err error, field string) error {
	if ve, ok := err.(*vector.ValidationError); ok {
		ve.Field = field
	}
	return err
}
