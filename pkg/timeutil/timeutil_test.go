package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-02")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02", FormatDateStr(d))

	d, err = ParseDate("2024-12-31T23:30:00+03:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31", FormatDateStr(d))

	_, err = ParseDate("not-a-date")
	assert.Error(t, err)

	_, err = ParseDate("2025-02-30")
	assert.Error(t, err)
}

func TestAddDays_CrossesYearBoundary(t *testing.T) {
	d := Date(2024, time.December, 31)
	assert.Equal(t, "2025-01-01", FormatDateStr(AddDays(d, 1)))
	assert.Equal(t, "2024-12-30", FormatDateStr(AddDays(d, -1)))
	assert.Equal(t, "2024-02-29", FormatDateStr(AddDays(Date(2024, time.March, 1), -1)))
}

func TestIsSameDay(t *testing.T) {
	a := Date(2025, time.January, 1)
	assert.True(t, IsSameDay(a, a.Add(23*time.Hour)))
	assert.False(t, IsSameDay(a, a.Add(24*time.Hour)))
}

func TestArabicNames(t *testing.T) {
	assert.Equal(t, "الأحد", WeekdayNameAr(Date(2026, time.October, 18)))
	assert.Equal(t, "أكتوبر", MonthNameAr(time.October))
	assert.Equal(t, "", MonthNameAr(13))
}

func TestLoadZone_FallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, LoadZone("Mars/Olympus_Mons"))
	assert.Equal(t, time.UTC, LoadZone(""))
}
