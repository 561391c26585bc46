package redis

import (
	"context"
	"errors"
	"time"

	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
	"github.com/badr-center/halaqa-tracker/internal/domain/shared"
)

// PrefixStats namespaces statistics entries.
const PrefixStats = "stats:"

// TTLStats is the default lifetime of a statistics entry.
const TTLStats = 24 * time.Hour

// StatsKey returns the key for a state fingerprint.
func StatsKey(fingerprint string) string {
	return PrefixStats + fingerprint
}

// StatsCache stores aggregated statistics per state fingerprint.
type StatsCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewStatsCache creates a StatsCache. A non-positive ttl uses TTLStats.
func NewStatsCache(cache *Cache, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = TTLStats
	}
	return &StatsCache{cache: cache, ttl: ttl}
}

// Get returns the cached statistics. A miss matches shared.ErrNotFound.
func (s *StatsCache) Get(ctx context.Context, fingerprint string) ([]attendance.StudentStats, error) {
	var stats []attendance.StudentStats
	if err := s.cache.Get(ctx, StatsKey(fingerprint), &stats); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, shared.WrapError("stats_cache", "Get", shared.ErrNotFound, "miss", err)
		}
		return nil, shared.WrapError("stats_cache", "Get", shared.ErrExternalService, "redis get", err)
	}
	return stats, nil
}

// Set stores statistics for fingerprint.
func (s *StatsCache) Set(ctx context.Context, fingerprint string, stats []attendance.StudentStats) error {
	if stats == nil {
		stats = []attendance.StudentStats{}
	}
	if err := s.cache.Set(ctx, StatsKey(fingerprint), stats, s.ttl); err != nil {
		return shared.WrapError("stats_cache", "Set", shared.ErrExternalService, "redis set", err)
	}
	return nil
}

// Purge drops every statistics entry.
func (s *StatsCache) Purge(ctx context.Context) (int, error) {
	return s.cache.DeleteByPattern(ctx, PrefixStats+"*")
}
