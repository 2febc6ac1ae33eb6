package vector

import (
	"errors"
	"math"
	"testing"
)

func TestFilterMatches(t *testing.T) {
	meta := map[string]string{"subject": "MATH", "grade": "7"}

	cases := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"nil filter", nil, true},
		{"empty filter", Filter{}, true},
		{"single key", Filter{"subject": "MATH"}, true},
		{"all keys", Filter{"subject": "MATH", "grade": "7"}, true},
		{"mismatched value", Filter{"subject": "SCI"}, false},
		{"missing key", Filter{"topic": "fractions"}, false},
		{"one of two mismatched", Filter{"subject": "MATH", "grade": "8"}, false},
		{"empty value is not a wildcard", Filter{"topic": ""}, false},
	}
	for _, tc := range cases {
		if got := tc.filter.Matches(meta); got != tc.want {
			t.Errorf("%s: Matches = %v, want %v", tc.name, got, tc.want)
		}
	}

	if !(Filter{}).Matches(nil) {
		t.Errorf("empty filter should match nil metadata")
	}
	if (Filter{"subject": "MATH"}).Matches(nil) {
		t.Errorf("non-empty filter should not match nil metadata")
	}
}

func TestDocumentValidate(t *testing.T) {
	cases := []struct {
		name string
		doc  Document
		want error
	}{
		{"ok", Document{ID: "a", Embedding: []float32{1, 0}}, nil},
		{"empty id", Document{Embedding: []float32{1}}, ErrEmptyID},
		{"empty embedding", Document{ID: "a"}, ErrEmptyVector},
		{"zero embedding", Document{ID: "a", Embedding: []float32{0, 0, 0}}, ErrZeroVector},
		{"nan", Document{ID: "a", Embedding: []float32{1, float32(math.NaN())}}, ErrNonFinite},
		{"inf", Document{ID: "a", Embedding: []float32{float32(math.Inf(1))}}, ErrNonFinite},
	}
	for _, tc := range cases {
		err := tc.doc.Validate()
		if tc.want == nil {
			if err != nil {
				t.Errorf("%s: Validate = %v, want nil", tc.name, err)
			}
			continue
		}
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: Validate = %v, want %v", tc.name, err, tc.want)
		}
		if !IsValidation(err) {
			t.Errorf("%s: Validate = %T, want *ValidationError", tc.name, err)
		}
	}
}

func TestDocumentClone(t *testing.T) {
	orig := Document{ID: "a", Content: "c", Embedding: []float32{1, 2}, Metadata: map[string]string{"k": "v"}}
	cp := orig.Clone()
	cp.Embedding[0] = 9
	cp.Metadata["k"] = "changed"
	if orig.Embedding[0] != 1 || orig.Metadata["k"] != "v" {
		t.Fatalf("Clone shares state with original: %+v", orig)
	}
	if empty := (Document{ID: "x"}).Clone(); empty.Embedding != nil || empty.Metadata != nil {
		t.Fatalf("Clone of empty document allocated: %+v", empty)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Op: "upsert", Field: "embedding", ID: "a", Want: 3, Got: 2, Err: ErrDimensionMismatch}
	want := "vector: upsert [id=a]: embedding dimension mismatch: want 3, got 2"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("errors.Is(ErrDimensionMismatch) = false")
	}
}
