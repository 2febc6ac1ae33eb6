package engine

import (
	"path/filepath"
	"testing"
)

// TestOpenInMemory verifies that we can open an in-memory SQLite database
// using the modernc.org/sqlite driver and that tables survive across
// statements on the single pooled connection.
func TestOpenInMemory(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE TABLE t(x INTEGER)"); err != nil {
		t.Fatalf("CREATE TABLE failed: %v", err)
	}
	if _, err := db.Exec("INSERT INTO t(x) VALUES (1),(2),(3)"); err != nil {
		t.Fatalf("INSERT failed: %v", err)
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM t").Scan(&n); err != nil || n != 3 {
		t.Fatalf("COUNT = %d, %v; want 3, nil", n, err)
	}
}

// TestOpenFileAppliesPragmas checks WAL journaling on a file database.
func TestOpenFileAppliesPragmas(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "docs.db"))
	if err != nil {
		t.Fatalf("Open(file) failed: %v", err)
	}
	defer db.Close()

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("PRAGMA journal_mode failed: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("journal_mode = %q, want wal", mode)
	}
}

func TestWithPragmas(t *testing.T) {
	if got := withPragmas("a.db", "x(1)", "y(2)"); got != "a.db?_pragma=x(1)&_pragma=y(2)" {
		t.Fatalf("withPragmas = %q", got)
	}
	if got := withPragmas("file:a.db?cache=shared", "x(1)"); got != "file:a.db?cache=shared&_pragma=x(1)" {
		t.Fatalf("withPragmas = %q", got)
	}
	if _, err := Open(""); err == nil {
		t.Fatalf("Open(\"\") succeeded; want error")
	}
}
