// Package harvest schedules page fetches across a bounded worker pool
// and merges the results into flat, order-independent collections.
package harvest

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/wcanexus/nexus/internal/adapters/source"
	"github.com/wcanexus/nexus/pkg/logger"
	"github.com/wcanexus/nexus/pkg/metrics"
)

// Default harvester configuration constants.
const (
	defaultWorkers      = 16
	defaultJitter       = 300 * time.Millisecond
	defaultMaxOpenEnded = 2000
)

// Fetcher is the page retrieval dependency.
type Fetcher interface {
	FetchPage(ctx context.Context, collection string, page int) (source.Page, error)
}

// Harvester fans page fetches out over a fixed-size worker pool. One
// instance may be reused across collections.
type Harvester struct {
	fetcher      Fetcher
	workers      int
	jitter       time.Duration
	maxOpenEnded int
	log          logger.Logger
}

// New creates a harvester with the given fetcher.
func New(f Fetcher, opts ...Option) *Harvester {
	h := &Harvester{
		fetcher:      f,
		workers:      defaultWorkers,
		jitter:       defaultJitter,
		maxOpenEnded: defaultMaxOpenEnded,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.Get().Named("harvest")
	}
	return h
}

// Run fetches pages 1..totalPages of a collection and returns every
// record of every page that succeeded. Pages that fail after retries
// are omitted; only a completely empty harvest is an error. When
// totalPages is zero the page count is treated as unknowable and the
// collection is walked sequentially until the source answers not-found.
func (h *Harvester) Run(ctx context.Context, collection string, totalPages int) ([]json.RawMessage, error) {
	if totalPages <= 0 {
		return h.runSequential(ctx, collection)
	}
	return h.RunRange(ctx, collection, 1, totalPages)
}

// RunRange fetches pages first..last inclusive across the worker pool.
// Items come back in page order no matter which worker finished first.
func (h *Harvester) RunRange(ctx context.Context, collection string, first, last int) ([]json.RawMessage, error) {
	start := time.Now()
	jobs := make(chan int)
	var (
		mu     sync.Mutex
		byPage = make(map[int][]json.RawMessage, last-first+1)
		failed int
	)

	var wg sync.WaitGroup
	for i := 0; i < h.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range jobs {
				p, err := h.fetcher.FetchPage(ctx, collection, page)
				mu.Lock()
				if err != nil {
					failed++
				} else {
					byPage[page] = p.Items
				}
				mu.Unlock()
				if err != nil && !errors.Is(err, context.Canceled) {
					h.log.Warn(ctx, "dropping page",
						logger.String("collection", collection),
						logger.Int("page", page),
						logger.Error(err),
					)
				}
			}
		}()
	}

feed:
	for page := first; page <= last; page++ {
		select {
		case jobs <- page:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	// Concatenate in page order so the result is independent of which
	// worker finished first.
	var items []json.RawMessage
	for page := first; page <= last; page++ {
		items = append(items, byPage[page]...)
	}

	if len(items) == 0 && ctx.Err() == nil {
		return nil, ErrNoPages
	}

	metrics.ObserveHarvestDuration(collection, time.Since(start))
	h.log.Info(ctx, "collection harvested",
		logger.String("collection", collection),
		logger.Int("pages", last-first+1),
		logger.Int("failed_pages", failed),
		logger.Int("records", len(items)),
		logger.Duration("took", time.Since(start)),
	)
	return items, ctx.Err()
}

// runSequential walks pages one at a time with a small random pause,
// stopping at the first terminal not-found. Used when the total page
// count cannot be trusted, or the source rate-limits aggressively.
func (h *Harvester) runSequential(ctx context.Context, collection string) ([]json.RawMessage, error) {
	start := time.Now()
	var items []json.RawMessage
	var failed int

	for page := 1; page <= h.maxOpenEnded; page++ {
		if ctx.Err() != nil {
			break
		}
		p, err := h.fetcher.FetchPage(ctx, collection, page)
		switch {
		case err == nil:
			items = append(items, p.Items...)
		case errors.Is(err, source.ErrPageNotFound):
			metrics.ObserveHarvestDuration(collection, time.Since(start))
			h.log.Info(ctx, "collection harvested",
				logger.String("collection", collection),
				logger.Int("pages", page-1),
				logger.Int("failed_pages", failed),
				logger.Int("records", len(items)),
				logger.Duration("took", time.Since(start)),
			)
			if len(items) == 0 {
				return nil, ErrNoPages
			}
			return items, nil
		default:
			// A dropped page in sequential mode cannot distinguish
			// "gap" from "end", so keep walking.
			failed++
			h.log.Warn(ctx, "dropping page",
				logger.String("collection", collection),
				logger.Int("page", page),
				logger.Error(err),
			)
		}
		if h.jitter > 0 {
			select {
			case <-time.After(time.Duration(rand.Int63n(int64(h.jitter)))):
			case <-ctx.Done():
			}
		}
	}

	if len(items) == 0 && ctx.Err() == nil {
		return nil, ErrNoPages
	}
	return items, ctx.Err()
}
