package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/viant/docstore/store"
	"github.com/viant/docstore/vector"
)

const (
	// DefaultPrefix namespaces every key written by the repository.
	DefaultPrefix = "docstore:"

	// loadBatch bounds the number of keys per MGET during LoadAll.
	loadBatch = 256
)

// Config configures the Redis repository.
type Config struct {
	// URL is a redis:// or rediss:// connection URL.
	URL string

	// Prefix namespaces keys; defaults to DefaultPrefix.
	Prefix string
}

// Repository persists documents in Redis.
type Repository struct {
	client *redis.Client
	prefix string
}

// New parses the URL, connects and pings the server.
func New(ctx context.Context, cfg Config) (*Repository, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return NewWithClient(client, cfg.Prefix), nil
}

// NewWithClient wraps an existing client. Close closes it.
func NewWithClient(client *redis.Client, prefix string) *Repository {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Repository{client: client, prefix: prefix}
}

// LoadAll returns every document ordered by its first-insertion score.
func (r *Repository) LoadAll(ctx context.Context) ([]vector.Document, error) {
	ids, err := r.client.ZRange(ctx, r.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: read order: %w", err)
	}

	out := make([]vector.Document, 0, len(ids))
	for start := 0; start < len(ids); start += loadBatch {
		end := min(start+loadBatch, len(ids))
		keys := make([]string, 0, end-start)
		for _, id := range ids[start:end] {
			keys = append(keys, r.docKey(id))
		}
		values, err := r.client.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, fmt.Errorf("redis: read documents: %w", err)
		}
		for i, v := range values {
			raw, ok := v.(string)
			if !ok {
				// order entry without a document; skip it
				continue
			}
			var d vector.Document
			if err := json.Unmarshal([]byte(raw), &d); err != nil {
				return nil, fmt.Errorf("redis: document %q: %w", ids[start+i], err)
			}
			out = append(out, d)
		}
	}
	return out, nil
}

// Save writes the document and, on first insertion, appends it to the order
// set. A replaced document keeps its original score.
func (r *Repository) Save(ctx context.Context, doc vector.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("redis: encode document: %w", err)
	}

	seq, err := r.client.ZScore(ctx, r.orderKey(), doc.ID).Result()
	if errors.Is(err, redis.Nil) {
		next, incrErr := r.client.Incr(ctx, r.seqKey()).Result()
		if incrErr != nil {
			return fmt.Errorf("redis: next seq: %w", incrErr)
		}
		seq = float64(next)
	} else if err != nil {
		return fmt.Errorf("redis: read seq: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.docKey(doc.ID), payload, 0)
		pipe.ZAddNX(ctx, r.orderKey(), redis.Z{Score: seq, Member: doc.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: save document: %w", err)
	}
	return nil
}

// Delete removes the document and its order entry.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.docKey(id))
		pipe.ZRem(ctx, r.orderKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: delete document: %w", err)
	}
	return nil
}

// Close closes the client.
func (r *Repository) Close() error {
	return r.client.Close()
}

func (r *Repository) docKey(id string) string { return r.prefix + "doc:" + id }

func (r *Repository) orderKey() string { return r.prefix + "order" }

func (r *Repository) seqKey() string { return r.prefix + "seq" }

var _ store.Repository = (*Repository)(nil)
