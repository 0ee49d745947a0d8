// Package app owns the harvest-and-build pipeline and the query surface
// downstream consumers read once the readiness gate opens.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wcanexus/nexus/internal/adapters/source"
	"github.com/wcanexus/nexus/internal/cache"
	"github.com/wcanexus/nexus/internal/domain/completion"
	"github.com/wcanexus/nexus/internal/domain/geo"
	"github.com/wcanexus/nexus/internal/domain/model"
	"github.com/wcanexus/nexus/internal/gate"
	"github.com/wcanexus/nexus/internal/harvest"
	"github.com/wcanexus/nexus/internal/index/podium"
	"github.com/wcanexus/nexus/internal/index/rank"
	"github.com/wcanexus/nexus/pkg/logger"
	"github.com/wcanexus/nexus/pkg/metrics"
)

// Source collection names as they appear in page URLs.
const (
	collectionPersons      = "persons"
	collectionCompetitions = "competitions"
	staticCountries        = "countries"
)

// Fetcher is the page retrieval dependency of the pipeline.
type Fetcher interface {
	FetchPage(ctx context.Context, collection string, page int) (source.Page, error)
	FetchStatic(ctx context.Context, name string) ([]json.RawMessage, error)
}

// Service owns the in-memory snapshot, the three derived indices and
// the readiness gate. One coarse RWMutex guards the swap from old to
// new snapshot so readers never observe a half-updated structure.
type Service struct {
	mu sync.RWMutex

	// Dependencies
	fetcher   Fetcher
	harvester *harvest.Harvester
	store     *cache.Store
	gate      *gate.Gate

	// Configuration
	workerCount      int
	competitorPages  int
	maxSearchResults int

	// Snapshot and derived indices, replaced wholesale per rebuild.
	competitors       map[string]model.Competitor
	competitions      map[string]model.Competition
	countryContinents map[string]string
	rankIdx           *rank.Index
	podiumIdx         *podium.Index
	completionists    []completion.Record

	// Single-flight guard for the harvest pipeline.
	loading atomic.Bool

	log logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		gate:             gate.New(),
		workerCount:      16,
		competitorPages:  0,
		maxSearchResults: 50,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("nexus")
	}
	if s.fetcher != nil {
		s.harvester = harvest.New(s.fetcher,
			harvest.WithWorkers(s.workerCount),
			harvest.WithLogger(s.log.Named("harvest")),
		)
	}
	return s
}

// Start launches the bootstrap pipeline in the background. Queries are
// answered with ErrNotReady until the first cycle completes. Duplicate
// Start calls while a cycle is in flight are no-ops.
func (s *Service) Start(ctx context.Context) {
	go func() {
		if err := s.Bootstrap(ctx); err != nil {
			s.log.Error(ctx, "bootstrap failed", logger.Error(err))
		}
	}()
}

// Bootstrap runs one cache-or-harvest cycle synchronously. It is safe
// to call from multiple initialization paths: only one cycle runs at a
// time, later callers return immediately.
func (s *Service) Bootstrap(ctx context.Context) error {
	if !s.loading.CompareAndSwap(false, true) {
		s.log.Info(ctx, "harvest already in progress, skipping")
		return nil
	}
	defer s.loading.Store(false)

	runID := uuid.NewString()
	s.log.Info(ctx, "bootstrap starting", logger.String("run_id", runID))

	if s.store != nil {
		if snap, err := s.store.Load(ctx); err == nil {
			s.publish(ctx, snap)
			s.log.Info(ctx, "bootstrap complete from cache", logger.String("run_id", runID))
			return nil
		}
	}
	if s.fetcher == nil {
		return ErrNoFetcher
	}

	snap, err := s.harvestAll(ctx)
	if err != nil {
		return fmt.Errorf("harvest: %w", err)
	}
	s.publish(ctx, snap)

	if s.store != nil {
		if err := s.store.Save(ctx, snap); err != nil {
			s.log.Warn(ctx, "snapshot save failed", logger.Error(err))
		}
	}
	s.log.Info(ctx, "bootstrap complete from harvest", logger.String("run_id", runID))
	return nil
}

// Refresh forces a fresh harvest, bypassing the cache. The gate stays
// open while the new snapshot is prepared; the swap is atomic.
func (s *Service) Refresh(ctx context.Context) error {
	if !s.loading.CompareAndSwap(false, true) {
		return nil
	}
	defer s.loading.Store(false)

	if s.fetcher == nil {
		return ErrNoFetcher
	}
	snap, err := s.harvestAll(ctx)
	if err != nil {
		return fmt.Errorf("refresh harvest: %w", err)
	}
	s.publish(ctx, snap)
	if s.store != nil {
		if err := s.store.Save(ctx, snap); err != nil {
			s.log.Warn(ctx, "snapshot save failed", logger.Error(err))
		}
	}
	return nil
}

// harvestAll fetches the three source collections concurrently and
// merges them into one snapshot. Competitor pages are mandatory; the
// country mapping and competitions degrade gracefully when missing.
func (s *Service) harvestAll(ctx context.Context) (cache.Snapshot, error) {
	var (
		mu   sync.Mutex
		snap = cache.Snapshot{
			Competitions:      map[string]model.Competition{},
			CountryContinents: map[string]string{},
		}
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		records, err := s.fetcher.FetchStatic(gctx, staticCountries)
		if err != nil {
			// Continent-scope entries are skipped without the mapping.
			s.log.Warn(gctx, "country mapping unavailable", logger.Error(err))
			return nil
		}
		mu.Lock()
		snap.CountryContinents = geo.BuildCountryContinents(records)
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		items, err := s.harvestCompetitions(gctx)
		if err != nil {
			// Completionist dates degrade without competition dates.
			s.log.Warn(gctx, "competition harvest failed", logger.Error(err))
			return nil
		}
		mu.Lock()
		snap.Competitions = harvest.MergeCompetitions(items)
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		items, err := s.harvester.Run(gctx, collectionPersons, s.competitorPages)
		if err != nil {
			return fmt.Errorf("competitor collection: %w", err)
		}
		mu.Lock()
		snap.Competitors = harvest.MergeCompetitors(items)
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return cache.Snapshot{}, err
	}
	snap.SavedAt = time.Now().UTC()
	return snap, nil
}

// harvestCompetitions sizes the fan-out from the first page's
// pagination metadata, falling back to open-ended pagination when the
// metadata is absent.
func (s *Service) harvestCompetitions(ctx context.Context) ([]json.RawMessage, error) {
	first, err := s.fetcher.FetchPage(ctx, collectionCompetitions, 1)
	if err != nil {
		return nil, err
	}
	if first.Total <= 0 || first.PageSize <= 0 {
		return s.harvester.Run(ctx, collectionCompetitions, 0)
	}
	totalPages := int(math.Ceil(float64(first.Total) / float64(first.PageSize)))
	items := first.Items
	if totalPages > 1 {
		rest, err := s.harvester.RunRange(ctx, collectionCompetitions, 2, totalPages)
		if err != nil {
			s.log.Warn(ctx, "partial competition harvest", logger.Error(err))
		}
		items = append(items, rest...)
	}
	return items, nil
}

// publish rebuilds the three derived indices from a fully-materialized
// snapshot and swaps everything in atomically.
func (s *Service) publish(ctx context.Context, snap cache.Snapshot) {
	start := time.Now()
	rankIdx := rank.Build(snap.Competitors, snap.CountryContinents)
	metrics.ObserveIndexBuild("rank", time.Since(start))

	t := time.Now()
	podiumIdx := podium.Build(snap.Competitors)
	metrics.ObserveIndexBuild("podium", time.Since(t))

	t = time.Now()
	completionists := completion.BuildAll(snap.Competitors, snap.Competitions)
	metrics.ObserveIndexBuild("completionist", time.Since(t))

	s.mu.Lock()
	s.competitors = snap.Competitors
	s.competitions = snap.Competitions
	s.countryContinents = snap.CountryContinents
	s.rankIdx = rankIdx
	s.podiumIdx = podiumIdx
	s.completionists = completionists
	s.mu.Unlock()

	s.gate.MarkReady()
	metrics.UpdateReady(true)
	metrics.UpdateRecords("competitors", len(snap.Competitors))
	metrics.UpdateRecords("competitions", len(snap.Competitions))
	metrics.UpdateIndexSize("rank", rankIdx.Size())
	metrics.UpdateIndexSize("podium", podiumIdx.Competitors())
	metrics.UpdateIndexSize("completionist", len(completionists))

	s.log.Info(ctx, "indices published",
		logger.Int("competitors", len(snap.Competitors)),
		logger.Int("competitions", len(snap.Competitions)),
		logger.Int("rank_cells", rankIdx.Size()),
		logger.Int("podium_holders", podiumIdx.Competitors()),
		logger.Int("completionists", len(completionists)),
		logger.Duration("took", time.Since(start)),
	)
}

// Ready reports whether the first cycle has completed.
func (s *Service) Ready() bool { return s.gate.Ready() }

// WaitReady blocks until ready or the timeout elapses.
func (s *Service) WaitReady(timeout time.Duration) bool { return s.gate.Wait(timeout) }

// Stats returns service statistics for monitoring.
func (s *Service) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := map[string]interface{}{
		"ready":       s.gate.Ready(),
		"workerCount": s.workerCount,
	}
	if s.rankIdx != nil {
		stats["competitors"] = len(s.competitors)
		stats["competitions"] = len(s.competitions)
		stats["rankCells"] = s.rankIdx.Size()
		stats["podiumHolders"] = s.podiumIdx.Competitors()
		stats["completionists"] = len(s.completionists)
	}
	return stats
}
