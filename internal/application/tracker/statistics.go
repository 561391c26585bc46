package tracker

import (
	"context"

	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
	"github.com/badr-center/halaqa-tracker/internal/domain/shared"
	"github.com/badr-center/halaqa-tracker/pkg/logger"
)

// Statistics returns per-student counts in roster order. Results are memoised
// per state fingerprint and, when a cache is configured, shared through it.
// Cache failures are logged and the counts are recomputed.
func (s *Store) Statistics(ctx context.Context) []attendance.StudentStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	fp := s.fingerprint
	if fp != "" && s.statsFor == fp {
		return cloneStats(s.stats)
	}

	if s.cache != nil && fp != "" {
		cached, err := s.cache.Get(ctx, fp)
		switch {
		case err == nil:
			s.remember(fp, cached)
			return cloneStats(cached)
		case !shared.IsNotFound(err):
			s.log.Warn("stats cache read failed", logger.Err(err))
		}
	}

	stats := attendance.Aggregate(s.roster.List(), s.ledger)
	s.remember(fp, stats)

	if s.cache != nil && fp != "" {
		if err := s.cache.Set(ctx, fp, stats); err != nil {
			s.log.Warn("stats cache write failed", logger.Err(err))
		}
	}
	return cloneStats(stats)
}

func (s *Store) remember(fp string, stats []attendance.StudentStats) {
	s.stats = cloneStats(stats)
	s.statsFor = fp
}

func cloneStats(stats []attendance.StudentStats) []attendance.StudentStats {
	out := make([]attendance.StudentStats, len(stats))
	copy(out, stats)
	return out
}
