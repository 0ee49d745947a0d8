// Package cache persists the harvested snapshot to a local binary file
// so later process starts can skip the network harvest.
package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/wcanexus/nexus/internal/domain/model"
	"github.com/wcanexus/nexus/pkg/logger"
	"github.com/wcanexus/nexus/pkg/metrics"
)

// ErrMiss is returned when no usable cache exists. Stale or corrupt
// files are deleted and reported as a miss, never as an error.
var ErrMiss = errors.New("cache miss")

// defaultTTL is the freshness window beyond which a cache file is
// discarded.
const defaultTTL = 24 * time.Hour

// Snapshot is the persisted form of one harvest: the raw collections,
// from which every index can be rebuilt cheaply.
type Snapshot struct {
	Competitors       map[string]model.Competitor  `msgpack:"competitors"`
	Competitions      map[string]model.Competition `msgpack:"competitions"`
	CountryContinents map[string]string            `msgpack:"country_continents"`
	SavedAt           time.Time                    `msgpack:"saved_at"`
}

// Store reads and writes snapshot files.
type Store struct {
	path string
	ttl  time.Duration
	log  logger.Logger
}

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithTTL sets the freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore creates a snapshot store at the given file path.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{path: path, ttl: defaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("cache")
	}
	return s
}

// Load returns the cached snapshot, or ErrMiss when the file is absent,
// stale or unreadable. Bad files are removed on the way out.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		metrics.RecordCacheMiss()
		return Snapshot{}, ErrMiss
	}
	if time.Since(info.ModTime()) > s.ttl {
		s.log.Info(ctx, "cache expired, discarding", logger.String("path", s.path))
		s.discard(ctx)
		return Snapshot{}, ErrMiss
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.log.Warn(ctx, "cache unreadable, discarding", logger.String("path", s.path), logger.Error(err))
		s.discard(ctx)
		return Snapshot{}, ErrMiss
	}
	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		s.log.Warn(ctx, "cache corrupt, discarding", logger.String("path", s.path), logger.Error(err))
		s.discard(ctx)
		return Snapshot{}, ErrMiss
	}
	if len(snap.Competitors) == 0 {
		s.discard(ctx)
		return Snapshot{}, ErrMiss
	}

	metrics.RecordCacheHit()
	s.log.Info(ctx, "snapshot loaded from cache",
		logger.String("path", s.path),
		logger.Int("competitors", len(snap.Competitors)),
		logger.Int("competitions", len(snap.Competitions)),
	)
	return snap, nil
}

// Save writes the snapshot atomically (temp file then rename). Failures
// are reported but callers treat them as non-fatal.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("publish snapshot: %w", err)
	}
	s.log.Info(ctx, "snapshot saved",
		logger.String("path", s.path),
		logger.Int("bytes", len(data)),
		logger.Int("competitors", len(snap.Competitors)),
	)
	return nil
}

func (s *Store) discard(ctx context.Context) {
	metrics.RecordCacheMiss()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.log.Warn(ctx, "failed to remove cache file", logger.String("path", s.path), logger.Error(err))
	}
}
