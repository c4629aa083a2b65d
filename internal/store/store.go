// Package store publishes normalized programs into Supabase. The default
// backend goes through the PostgREST API; deployments with a direct
// database connection string use the Postgres backend instead. Both upsert
// on the program key.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bachelor-sync/internal/domain"
	"bachelor-sync/internal/httpx"
)

// ErrMissingConfig is a configuration error: no network call has been
// attempted when it is returned.
var ErrMissingConfig = errors.New("store: missing SUPABASE_URL / SUPABASE_KEY")

// Config is passed in explicitly; the package never reads the
// environment itself.
type Config struct {
	// REST backend
	URL   string
	Key   string
	Table string

	// When set, the direct Postgres backend is used and URL/Key are
	// ignored.
	DSN string

	// BatchSize bounds upsert request size. Default 500.
	BatchSize int

	// Retry governs per-batch retries. MaxAttempts/BaseDelay/MaxDelay
	// are the relevant fields.
	Retry httpx.RetryConfig
}

// Backend is one way of talking to the datastore.
type Backend interface {
	// Ping verifies the connection. Failure here is fatal for the run.
	Ping(ctx context.Context) error
	// UpsertBatch inserts-or-updates one batch keyed by program_key.
	UpsertBatch(ctx context.Context, programs []domain.Program) error
	Close()
}

// Result reports what a publish run achieved. FailedBatches counts
// batches that exhausted their retries; they do not fail the run.
type Result struct {
	Published     int
	FailedBatches int
}

type Publisher struct {
	backend   Backend
	batchSize int
	retry     httpx.RetryConfig
}

// NewPublisher validates cfg, connects the right backend and pings it.
// A missing URL/Key (or DSN) is ErrMissingConfig; a dead connection is a
// fatal error. Both happen before any record is sent.
func NewPublisher(ctx context.Context, cfg Config) (*Publisher, error) {
	var (
		backend Backend
		err     error
	)
	switch {
	case cfg.DSN != "":
		backend, err = newPostgresBackend(ctx, cfg.DSN)
	case cfg.URL != "" && cfg.Key != "":
		backend = newRESTBackend(cfg)
	default:
		return nil, ErrMissingConfig
	}
	if err != nil {
		return nil, err
	}

	if err := backend.Ping(ctx); err != nil {
		backend.Close()
		return nil, fmt.Errorf("store: datastore unreachable: %w", err)
	}

	// The direct connection can create its own table; the REST API
	// cannot, there the table is part of the project setup.
	if pg, ok := backend.(*postgresBackend); ok {
		if err := pg.EnsureSchema(ctx); err != nil {
			backend.Close()
			return nil, err
		}
	}

	return newPublisherWith(backend, cfg), nil
}

func newPublisherWith(backend Backend, cfg Config) *Publisher {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}
	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 4
	}
	if retry.BaseDelay <= 0 {
		retry.BaseDelay = time.Second
	}
	if retry.MaxDelay <= 0 {
		retry.MaxDelay = 30 * time.Second
	}
	return &Publisher{backend: backend, batchSize: batchSize, retry: retry}
}

func (p *Publisher) Close() {
	p.backend.Close()
}

// Publish upserts all programs in fixed-size batches. A batch that keeps
// failing after the retry ceiling is logged and counted; the run moves on
// to the remaining batches. Only context cancellation aborts the run.
func (p *Publisher) Publish(ctx context.Context, programs []domain.Program) (Result, error) {
	var res Result

	for start := 0; start < len(programs); start += p.batchSize {
		end := start + p.batchSize
		if end > len(programs) {
			end = len(programs)
		}
		batch := programs[start:end]

		if err := p.upsertWithRetry(ctx, batch); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			log.Printf("WARN: store: batch %d-%d failed after %d attempts: %v", start, end, p.retry.MaxAttempts, err)
			res.FailedBatches++
			continue
		}
		res.Published += len(batch)
	}

	return res, nil
}

func (p *Publisher) upsertWithRetry(ctx context.Context, batch []domain.Program) error {
	var lastErr error
	for attempt := 1; attempt <= p.retry.MaxAttempts; attempt++ {
		lastErr = p.backend.UpsertBatch(ctx, batch)
		if lastErr == nil {
			return nil
		}
		if attempt < p.retry.MaxAttempts {
			if err := httpx.Backoff(ctx, attempt, p.retry.BaseDelay, p.retry.MaxDelay); err != nil {
				return err
			}
		}
	}
	return lastErr
}
