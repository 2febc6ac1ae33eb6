package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/viant/docstore/embedding"
	"github.com/viant/docstore/vector"
)

// Defaults applied when a setting is zero. config shares them.
const (
	// DefaultConcurrency is the number of items embedded at once.
	DefaultConcurrency = 4
	// DefaultRetries is the number of extra attempts per failing step.
	DefaultRetries = 3
	// DefaultBackoff is the delay before the first retry.
	DefaultBackoff = 200 * time.Millisecond
)

// Upserter is the part of the store the ingester writes to.
type Upserter interface {
	Upsert(ctx context.Context, doc vector.Document) error
}

// Ingester embeds items and upserts them into Store.
type Ingester struct {
	Embedder embedding.Embedder
	Store    Upserter

	// Concurrency bounds in-flight items; <= 0 selects DefaultConcurrency.
	Concurrency int
	// Retries is the number of extra attempts per failing step; < 0 disables.
	Retries int
	// Backoff is the first retry delay, doubled on each attempt.
	Backoff time.Duration
	Logger  *slog.Logger
}

// Report summarizes a run.
type Report struct {
	Ingested int
	Skipped  int
	Failed   int
	Errors   []error
}

// Run ingests items. Per-item failures are collected in the report; the
// returned error is non-nil only when ctx ends the run early.
func (in *Ingester) Run(ctx context.Context, items []Item) (Report, error) {
	if in.Embedder == nil || in.Store == nil {
		return Report{}, fmt.Errorf("ingest: embedder and store are required")
	}
	logger := in.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	limit := in.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var (
		mu     sync.Mutex
		report Report
	)
	record := func(err error, skipped bool) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case skipped:
			report.Skipped++
		case err != nil:
			report.Failed++
			report.Errors = append(report.Errors, err)
		default:
			report.Ingested++
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		if item.Content == "" {
			logger.Warn("skipping item without content", "id", item.ID)
			record(nil, true)
			continue
		}
		g.Go(func() error {
			err := in.ingest(gctx, item)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Warn("ingest failed", "id", item.ID, "err", err)
			} else {
				logger.Debug("ingested", "id", item.ID)
			}
			record(err, false)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	logger.Info("ingest finished", "ingested", report.Ingested, "skipped", report.Skipped, "failed", report.Failed)
	return report, err
}

func (in *Ingester) ingest(ctx context.Context, item Item) error {
	var vec []float32
	err := in.retry(ctx, func() error {
		var err error
		vec, err = in.Embedder.Embed(ctx, item.Content)
		return err
	})
	if err != nil {
		return fmt.Errorf("ingest: embed %q: %w", item.ID, err)
	}

	doc := item.Document(vec)
	err = in.retry(ctx, func() error {
		err := in.Store.Upsert(ctx, doc)
		if vector.IsValidation(err) {
			return permanent{err}
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("ingest: upsert %q: %w", item.ID, err)
	}
	return nil
}

// permanent marks an error that retrying cannot fix.
type permanent struct{ err error }

func (p permanent) Error() string { return p.err.Error() }

func (p permanent) Unwrap() error { return p.err }

func (in *Ingester) retry(ctx context.Context, fn func() error) error {
	retries := in.Retries
	if retries < 0 {
		retries = 0
	}
	delay := in.Backoff
	if delay <= 0 {
		delay = DefaultBackoff
	}
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if p, ok := err.(permanent); ok {
			return p.err
		}
		if attempt >= retries {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
