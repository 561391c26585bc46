// Package calendar tracks which day the user is looking at.
package calendar

import (
	"time"

	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
	"github.com/badr-center/halaqa-tracker/pkg/timeutil"
)

// Navigator holds the viewed date next to the "today" captured when it was
// created. It is never persisted.
type Navigator struct {
	today   time.Time
	current time.Time
}

// NewNavigator starts on the civil day of now.
func NewNavigator(now time.Time) *Navigator {
	today := timeutil.StartOfDay(now)
	return &Navigator{today: today, current: today}
}

// Current returns midnight of the viewed date.
func (n *Navigator) Current() time.Time { return n.current }

// Today returns midnight of the day the navigator was created.
func (n *Navigator) Today() time.Time { return n.today }

// Key returns the ledger key of the viewed date.
func (n *Navigator) Key() attendance.DateKey {
	return attendance.KeyOf(n.current)
}

// StepDay moves the viewed date by delta days.
func (n *Navigator) StepDay(delta int) {
	n.current = timeutil.AddDays(n.current, delta)
}

func (n *Navigator) Next() { n.StepDay(1) }
func (n *Navigator) Prev() { n.StepDay(-1) }

// GoToToday returns to the startup day.
func (n *Navigator) GoToToday() {
	n.current = n.today
}

// SetDate jumps to value, given as YYYY-MM-DD or an RFC 3339 timestamp.
// Anything unparsable leaves the viewed date alone.
func (n *Navigator) SetDate(value string) bool {
	t, err := timeutil.ParseDate(value)
	if err != nil {
		return false
	}
	n.current = t
	return true
}

// IsToday reports whether the viewed date is the startup day.
func (n *Navigator) IsToday() bool {
	return timeutil.IsSameDay(n.current, n.today)
}
