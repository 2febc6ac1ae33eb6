package repository

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/viant/docstore/repository/postgres"
	"github.com/viant/docstore/repository/qdrant"
	"github.com/viant/docstore/repository/redis"
	"github.com/viant/docstore/repository/sqlite"
	"github.com/viant/docstore/store"
)

// Backend names the kind of repository a DSN resolves to.
type Backend string

// Backends understood by Resolve. The BackendMemory value doubles as the
// DSN for a store without persistence.
const (
	BackendMemory   Backend = "memory"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
	BackendQdrant   Backend = "qdrant"
)

// Resolve reports which backend serves dsn:
//   - "" or "memory": no persistence
//   - postgres:// or postgresql://: PostgreSQL
//   - redis:// or rediss://: Redis
//   - qdrant:// or qdrants://: Qdrant
//   - anything else (sqlite://path, file:..., a bare path): SQLite
func Resolve(dsn string) Backend {
	switch {
	case dsn == "" || dsn == string(BackendMemory):
		return BackendMemory
	case hasAnyPrefix(dsn, "postgres://", "postgresql://"):
		return BackendPostgres
	case hasAnyPrefix(dsn, "redis://", "rediss://"):
		return BackendRedis
	case hasAnyPrefix(dsn, "qdrant://", "qdrants://"):
		return BackendQdrant
	default:
		return BackendSQLite
	}
}

// Open creates the repository dsn resolves to. It returns a nil repository
// for the memory backend.
func Open(ctx context.Context, dsn string) (store.Repository, error) {
	switch Resolve(dsn) {
	case BackendMemory:
		return nil, nil
	case BackendPostgres:
		repo, err := postgres.New(ctx, postgres.Config{DSN: dsn})
		if err != nil {
			return nil, err
		}
		return repo, nil
	case BackendRedis:
		repo, err := redis.New(ctx, redis.Config{URL: dsn})
		if err != nil {
			return nil, err
		}
		return repo, nil
	case BackendQdrant:
		cfg, err := qdrantConfig(dsn)
		if err != nil {
			return nil, err
		}
		repo, err := qdrant.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		repo, err := sqlite.Open(ctx, sqlitePath(dsn))
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
}

// qdrantConfig maps qdrant://[api_key@]host[:port][/collection] onto the
// client config; qdrants enables TLS.
func qdrantConfig(dsn string) (qdrant.Config, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return qdrant.Config{}, fmt.Errorf("qdrant: parse dsn: %w", err)
	}
	if u.Host == "" {
		return qdrant.Config{}, fmt.Errorf("qdrant: dsn %q has no host", dsn)
	}
	scheme := "http"
	if u.Scheme == "qdrants" {
		scheme = "https"
	}
	cfg := qdrant.Config{
		URL:        scheme + "://" + u.Host,
		Collection: strings.Trim(u.Path, "/"),
	}
	if u.User != nil {
		cfg.APIKey = u.User.Username()
	}
	return cfg, nil
}

func sqlitePath(dsn string) string {
	return strings.TrimPrefix(dsn, "sqlite://")
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
