package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/viant/docstore/vector"
)

// TestConcurrentInsertAndSearch runs writers and readers together. Every
// writer stores embeddings whose components all equal a per-version value,
// so a torn document would show up as a mixed vector. Run with -race.
func TestConcurrentInsertAndSearch(t *testing.T) {
	const (
		dim      = 64
		writers  = 4
		readers  = 4
		versions = 200
	)
	s := New(WithDimension(dim))
	mustUpsert(t, s, vector.Document{ID: "seed", Embedding: constVec(dim, 1)})

	var wg sync.WaitGroup
	errs := make(chan error, writers+readers)
	stop := make(chan struct{})

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", w)
			for v := 1; v <= versions; v++ {
				doc := vector.Document{
					ID:        id,
					Content:   fmt.Sprint(v),
					Embedding: constVec(dim, float32(v)),
					Metadata:  map[string]string{"version": fmt.Sprint(v)},
				}
				if err := s.Insert(context.Background(), doc); err != nil {
					errs <- err
					return
				}
				if v%10 == 0 {
					if err := s.Remove(context.Background(), id); err != nil {
						errs <- err
						return
					}
				}
			}
		}(w)
	}

	var rwg sync.WaitGroup
	for r := 0; r < readers; r++ {
		rwg.Add(1)
		go func() {
			defer rwg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				out, err := s.Search(constVec(dim, 1), 10, nil)
				if err != nil {
					errs <- err
					return
				}
				for _, m := range out {
					if err := checkUntorn(m.Document); err != nil {
						errs <- err
						return
					}
				}
			}
		}()
	}

	wg.Wait()
	close(stop)
	rwg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

// TestWriteVisibleToLaterSearch checks that a mutation which returned before
// a search started is always observed.
func TestWriteVisibleToLaterSearch(t *testing.T) {
	s := New(WithDimension(3))
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := fmt.Sprintf("w%d-%d", w, i)
				if err := s.Upsert(context.Background(), vector.Document{ID: id, Embedding: []float32{1, float32(w), float32(i)}, Metadata: map[string]string{"id": id}}); err != nil {
					t.Errorf("Upsert(%s) failed: %v", id, err)
					return
				}
				out, err := s.Search([]float32{1, 0, 0}, 1, vector.Filter{"id": id})
				if err != nil || len(out) != 1 || out[0].Document.ID != id {
					t.Errorf("Search after Upsert(%s) = %v, %v", id, out, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	if s.Len() != 400 {
		t.Fatalf("Len = %d, want 400", s.Len())
	}
}

func constVec(dim int, v float32) []float32 {
	out := make([]float32, dim)
	for i := range out {
		out[i] = v
	}
	return out
}

func checkUntorn(d vector.Document) error {
	first := d.Embedding[0]
	for i, v := range d.Embedding {
		if v != first {
			return fmt.Errorf("document %s torn at component %d: %v != %v", d.ID, i, v, first)
		}
	}
	if d.ID != "seed" && (d.Content != fmt.Sprint(first) || d.Metadata["version"] != fmt.Sprint(first)) {
		return fmt.Errorf("document %s mixes versions: content=%s metadata=%v embedding=%v", d.ID, d.Content, d.Metadata, first)
	}
	return nil
}
