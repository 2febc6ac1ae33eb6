// Package index defines the extension point through which the store selects
// its top-k results. The default implementation scans every candidate; an
// approximate index can replace it without changing store semantics.
package index
