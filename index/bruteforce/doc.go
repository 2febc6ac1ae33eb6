// Package bruteforce provides the exact index: it scores every candidate by
// cosine similarity and keeps the best k.
package bruteforce
