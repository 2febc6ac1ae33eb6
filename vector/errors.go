package vector

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyID is returned when a document has no id.
	ErrEmptyID = errors.New("empty document id")

	// ErrEmptyVector is returned for a zero-length embedding or query.
	ErrEmptyVector = errors.New("empty vector")

	// ErrZeroVector is returned for an all-zero embedding or query.
	ErrZeroVector = errors.New("zero-magnitude vector")

	// ErrNonFinite is returned when a vector holds NaN or Inf components.
	ErrNonFinite = errors.New("vector has non-finite component")

	// ErrDimensionMismatch is returned when a vector length differs from the
	// store dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrNegativeK is returned when a search asks for fewer than zero results.
	ErrNegativeK = errors.New("negative k")

	// ErrNotFound is available to callers that expect an id to exist. The
	// store itself never returns it.
	ErrNotFound = errors.New("document not found")
)

// ValidationError reports caller-correctable input. The store state is
// never modified when one is returned.
type ValidationError struct {
	Op    string // operation, e.g. "upsert" or "search"
	Field string // offending field: "id", "embedding", "query", "k"
	ID    string // document id, when known
	Want  int    // expected value for dimension/k problems
	Got   int    // actual value for dimension/k problems
	Err   error  // one of the sentinel errors above
}

func (e *ValidationError) Error() string {
	msg := e.Op
	if e.ID != "" {
		msg += fmt.Sprintf(" [id=%s]", e.ID)
	}
	if errors.Is(e.Err, ErrDimensionMismatch) {
		return fmt.Sprintf("vector: %s: %s %v: want %d, got %d", msg, e.Field, e.Err, e.Want, e.Got)
	}
	if errors.Is(e.Err, ErrNegativeK) {
		return fmt.Sprintf("vector: %s: %v %d", msg, e.Err, e.Got)
	}
	return fmt.Sprintf("vector: %s: %s: %v", msg, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
