package engine

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// DefaultBusyTimeoutMs is applied to file databases so concurrent writers
// wait for the lock instead of failing with SQLITE_BUSY.
const DefaultBusyTimeoutMs = 5000

// Open opens a SQLite database using the modernc.org/sqlite driver.
//
// For file-based databases, pass a path like "./db.sqlite"; WAL journaling
// and a busy timeout are enabled unless the DSN already carries _pragma
// parameters. For in-memory databases, pass ":memory:". Every connection to
// ":memory:" sees its own empty database, so the pool is limited to one
// connection.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("engine: empty dsn")
	}
	memory := isMemory(dsn)
	if !memory && !strings.Contains(dsn, "_pragma=") {
		dsn = withPragmas(dsn, fmt.Sprintf("busy_timeout(%d)", DefaultBusyTimeoutMs), "journal_mode(WAL)")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("engine: open sqlite: %w", err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

func withPragmas(dsn string, pragmas ...string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	var sb strings.Builder
	sb.WriteString(dsn)
	for _, p := range pragmas {
		sb.WriteString(sep)
		sb.WriteString("_pragma=")
		sb.WriteString(p)
		sep = "&"
	}
	return sb.String()
}
