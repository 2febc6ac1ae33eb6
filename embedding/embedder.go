// Package embedding turns text into vectors for the document store. The
// store itself never embeds; callers and the ingest pipeline do.
package embedding

import "context"

// Embedder converts free-form text into an embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Func adapts a plain function to Embedder. Implementations can call any
// provider (OpenAI, a local model, ...) as long as they return float32
// values.
type Func func(ctx context.Context, text string) ([]float32, error)

// Embed calls f.
func (f Func) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}
