package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badr-center/halaqa-tracker/internal/application/tracker"
	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
	"github.com/badr-center/halaqa-tracker/internal/domain/calendar"
	"github.com/badr-center/halaqa-tracker/internal/domain/report"
	"github.com/badr-center/halaqa-tracker/internal/infrastructure/persistence/memory"
)

func seededStore(t *testing.T) *tracker.Store {
	t.Helper()
	ctx := context.Background()
	s := tracker.New(tracker.Options{Storage: memory.NewStorage()})
	require.NoError(t, s.Load(ctx))

	_, _, err := s.SetFlag(ctx, "2025-01-01", 1, attendance.FlagMemorized, true)
	require.NoError(t, err)
	_, _, err = s.SetFlag(ctx, "2025-01-02", 1, attendance.FlagAbsent, true)
	require.NoError(t, err)
	_, _, err = s.SetFlag(ctx, "2025-01-02", 3, attendance.FlagReviewed, true)
	require.NoError(t, err)
	return s
}

func TestGetDay(t *testing.T) {
	store := seededStore(t)
	nav := calendar.NewNavigator(time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC))
	h := NewGetDayHandler(store, nil)

	view := h.Handle(context.Background(), nav)
	assert.Equal(t, attendance.DateKey("2025-01-01"), view.Date)
	assert.True(t, view.IsToday)
	require.Len(t, view.Rows, 4)
	assert.Equal(t, "١", view.Rows[0].IndexLabel)
	assert.True(t, view.Rows[0].Flags["memorized"])
	assert.False(t, view.Rows[1].Flags["memorized"])

	nav.Next()
	view = h.Handle(context.Background(), nav)
	assert.False(t, view.IsToday)
	assert.Equal(t, attendance.StatusSet{Absent: true}, view.Rows[0].Status)
	assert.Equal(t, attendance.StatusSet{Reviewed: true}, view.Rows[2].Status)
	assert.Contains(t, view.DateLabel, "الخميس، ٢ يناير ٢٠٢٥")
}

func TestGetStatistics(t *testing.T) {
	view := NewGetStatisticsHandler(seededStore(t)).Handle(context.Background())

	require.Len(t, view.Students, 4)
	assert.Equal(t, attendance.Counts{Memorized: 1, Absent: 1}, view.Students[0].Counts)
	assert.Equal(t, attendance.Counts{Memorized: 1, Reviewed: 1, Absent: 1}, view.Totals)
	assert.Equal(t, "محمد أحمد", view.Categories[0])

	require.Len(t, view.Series, 4)
	assert.Equal(t, attendance.FlagMemorized, view.Series[0].Flag)
	assert.Equal(t, []int{1, 0, 0, 0}, view.Series[0].Values)
	assert.Equal(t, []int{0, 0, 1, 0}, view.Series[1].Values)
}

func TestComposeReport(t *testing.T) {
	h := NewComposeReportHandler(seededStore(t), report.NewComposer("", "", nil), "أحمد")

	text := h.Handle(context.Background(), time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, text, "١. محمد أحمد — غائب")
	assert.Contains(t, text, "٣. علي حسن — حفظ: ❌ — مراجعة: ✅")

	assert.Equal(t, "مرحباً يا أستاذ أحمد", h.Welcome(time.Now()).Greeting)
}
