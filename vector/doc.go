// Package vector defines the document model shared by the store, the
// ranker and the persistence backends. It includes:
//   - Document, Filter and Match types
//   - validation of document ids and embeddings
//   - cosine similarity over float32 embeddings
//   - embedding (BLOB) and metadata (JSON) encoding used by backends
package vector
