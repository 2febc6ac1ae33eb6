// Package engine opens SQLite databases through the pure-Go
// modernc.org/sqlite driver so that every package in this module shares the
// same driver registration and connection settings.
package engine
