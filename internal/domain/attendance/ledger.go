package attendance

import (
	"sort"
	"time"

	"github.com/badr-center/halaqa-tracker/internal/domain/student"
	"github.com/badr-center/halaqa-tracker/pkg/timeutil"
)

// DateKey is a civil date formatted YYYY-MM-DD.
type DateKey string

// KeyOf returns the date key of t in the configured zone.
func KeyOf(t time.Time) DateKey {
	return DateKey(timeutil.FormatDateStr(t))
}

// ParseDateKey accepts exactly YYYY-MM-DD for a real calendar date.
func ParseDateKey(s string) (DateKey, bool) {
	t, err := time.Parse(timeutil.FormatDate, s)
	if err != nil {
		return "", false
	}
	return DateKey(t.Format(timeutil.FormatDate)), true
}

func (d DateKey) String() string {
	return string(d)
}

// Time returns midnight of the date in the configured zone.
func (d DateKey) Time() (time.Time, error) {
	return timeutil.ParseDate(string(d))
}

// DayRecord maps a student to the status recorded for one day.
type DayRecord map[student.ID]StatusSet

// Ledger holds the day records of every date that has at least one entry,
// plus dates whose entries were all removed with their students.
type Ledger map[DateKey]DayRecord

// NewLedger returns an empty ledger.
func NewLedger() Ledger {
	return make(Ledger)
}

// Status returns the recorded set, or the zero set when nothing was recorded.
func (l Ledger) Status(date DateKey, id student.ID) StatusSet {
	return l[date][id]
}

// SetFlag applies one flag change and stores the resulting set.
func (l Ledger) SetFlag(date DateKey, id student.ID, f Flag, value bool) StatusSet {
	if !f.IsValid() {
		return l.Status(date, id)
	}
	day, ok := l[date]
	if !ok {
		day = make(DayRecord)
		l[date] = day
	}
	next := day[id].With(f, value)
	day[id] = next
	return next
}

// ForDate returns a copy of the entries recorded for date.
func (l Ledger) ForDate(date DateKey) DayRecord {
	out := make(DayRecord, len(l[date]))
	for id, s := range l[date] {
		out[id] = s
	}
	return out
}

// RemoveStudent drops the student's entry from every date and returns how
// many entries went away. Emptied dates stay in the ledger.
func (l Ledger) RemoveStudent(id student.ID) int {
	removed := 0
	for _, day := range l {
		if _, ok := day[id]; ok {
			delete(day, id)
			removed++
		}
	}
	return removed
}

// Dates returns the ledger dates in ascending order.
func (l Ledger) Dates() []DateKey {
	dates := make([]DateKey, 0, len(l))
	for d := range l {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates
}

// Clone returns a deep copy.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for d, day := range l {
		cp := make(DayRecord, len(day))
		for id, s := range day {
			cp[id] = s
		}
		out[d] = cp
	}
	return out
}

// Entries counts the recorded (date, student) pairs.
func (l Ledger) Entries() int {
	n := 0
	for _, day := range l {
		n += len(day)
	}
	return n
}
