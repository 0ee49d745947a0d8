package app

import (
	"github.com/wcanexus/nexus/internal/cache"
	"github.com/wcanexus/nexus/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithFetcher sets the page fetcher dependency.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithCacheStore sets the snapshot cache.
func WithCacheStore(store *cache.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithWorkerCount bounds concurrent in-flight page fetches.
func WithWorkerCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workerCount = n
		}
	}
}

// WithCompetitorPages fixes the competitor collection's page count.
// Zero keeps open-ended sequential pagination.
func WithCompetitorPages(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.competitorPages = n
		}
	}
}

// WithMaxSearchResults caps name-search answers.
func WithMaxSearchResults(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSearchResults = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}
