package tracker

import (
	"context"

	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
	"github.com/badr-center/halaqa-tracker/internal/domain/student"
	"github.com/badr-center/halaqa-tracker/pkg/logger"
)

// Status returns the set recorded for a student on date, or the zero set.
func (s *Store) Status(date attendance.DateKey, id student.ID) attendance.StatusSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Status(date, id)
}

// ForDate returns the entries recorded on date.
func (s *Store) ForDate(date attendance.DateKey) attendance.DayRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.ForDate(date)
}

// SetFlag applies one flag change and persists the ledger. Students outside
// the roster and unknown flags are ignored; the current set is returned with
// changed=false.
func (s *Store) SetFlag(ctx context.Context, date attendance.DateKey, id student.ID, f attendance.Flag, value bool) (attendance.StatusSet, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !f.IsValid() || !s.roster.Contains(id) {
		return s.ledger.Status(date, id), false, nil
	}

	var next attendance.StatusSet
	ok, err := s.mutate(ctx, "set_flag", []string{SlotDailyRecords}, func() bool {
		next = s.ledger.SetFlag(date, id, f, value)
		return true
	})
	if err != nil {
		return s.ledger.Status(date, id), false, err
	}

	s.log.Debug("flag set",
		logger.DateKey(date.String()),
		logger.StudentID(int64(id)),
		logger.Flag(f.String()),
		logger.Bool("value", value),
	)
	return next, ok, nil
}
