// Package timeutil holds the zone-aware calendar helpers used across the
// tracker. All day arithmetic happens in one configured zone so a date key
// never depends on where the process happens to run.
package timeutil

import (
	"strings"
	"sync"
	"time"
)

// DefaultZoneName is the zone the halaqa operates in.
const DefaultZoneName = "Asia/Riyadh"

var (
	zoneMu sync.RWMutex
	zone   = time.UTC
)

// LoadZone resolves a zone name, falling back to UTC when it is unknown.
func LoadZone(name string) *time.Location {
	if strings.TrimSpace(name) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SetZone replaces the process-wide zone. Call it once at startup.
func SetZone(loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	zoneMu.Lock()
	zone = loc
	zoneMu.Unlock()
}

// Zone returns the process-wide zone.
func Zone() *time.Location {
	zoneMu.RLock()
	defer zoneMu.RUnlock()
	return zone
}

// Now returns the current time in the configured zone.
func Now() time.Time {
	return time.Now().In(Zone())
}

// Date creates midnight of the given civil date in the configured zone.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, Zone())
}

// StartOfDay returns 00:00 of t's civil day in the configured zone.
func StartOfDay(t time.Time) time.Time {
	local := t.In(Zone())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Zone())
}

// AddDays moves a day start by n civil days. Rebuilding the date instead of
// adding 24h keeps the result at midnight across DST transitions.
func AddDays(t time.Time, n int) time.Time {
	local := StartOfDay(t)
	return time.Date(local.Year(), local.Month(), local.Day()+n, 0, 0, 0, 0, Zone())
}

// IsSameDay checks if two times fall on the same civil day.
func IsSameDay(t1, t2 time.Time) bool {
	a1, a2 := t1.In(Zone()), t2.In(Zone())
	return a1.Year() == a2.Year() && a1.YearDay() == a2.YearDay()
}

// FormatDate is the layout of persisted date keys (YYYY-MM-DD).
const FormatDate = "2006-01-02"

// FormatDateStr formats t as YYYY-MM-DD in the configured zone.
func FormatDateStr(t time.Time) string {
	return t.In(Zone()).Format(FormatDate)
}

// ParseDate accepts YYYY-MM-DD, or an RFC 3339 timestamp whose civil date part
// is taken as written. The result is midnight in the configured zone.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation(FormatDate, value, Zone()); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return Date(t.Year(), t.Month(), t.Day()), nil
}

var weekdaysAr = [...]string{
	time.Sunday:    "الأحد",
	time.Monday:    "الاثنين",
	time.Tuesday:   "الثلاثاء",
	time.Wednesday: "الأربعاء",
	time.Thursday:  "الخميس",
	time.Friday:    "الجمعة",
	time.Saturday:  "السبت",
}

var monthsAr = [...]string{
	"", "يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

// WeekdayNameAr returns the Arabic name of t's weekday in the configured zone.
func WeekdayNameAr(t time.Time) string {
	return weekdaysAr[t.In(Zone()).Weekday()]
}

// MonthNameAr returns the Arabic (Gregorian) month name.
func MonthNameAr(m time.Month) string {
	if m >= time.January && m <= time.December {
		return monthsAr[m]
	}
	return ""
}
