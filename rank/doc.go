// Package rank scores candidate embeddings against a query by cosine
// similarity and selects the top k. It is pure and side-effect free: the
// ordering is by descending score with exact ties broken by ascending
// sequence number, so results never depend on map iteration order.
package rank
