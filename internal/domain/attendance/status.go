// Package attendance models the per-day status of every student: the four
// attendance flags, the date-keyed ledger that stores them and the statistics
// derived from it.
package attendance

import "strings"

// ══════════════════════════════════════════════════════════════════════════════
// FLAGS
// ══════════════════════════════════════════════════════════════════════════════

// Flag names one of the four boolean fields of a StatusSet.
type Flag string

const (
	FlagMemorized Flag = "memorized"
	FlagReviewed  Flag = "reviewed"
	FlagAbsent    Flag = "absent"
	FlagExcused   Flag = "excused"
)

// Flags lists the flags in display order.
var Flags = []Flag{FlagMemorized, FlagReviewed, FlagAbsent, FlagExcused}

var flagLabels = map[Flag]string{
	FlagMemorized: "حفظ",
	FlagReviewed:  "مراجعة",
	FlagAbsent:    "غائب",
	FlagExcused:   "مستأذن",
}

// IsValid reports whether f is one of the four known flags.
func (f Flag) IsValid() bool {
	_, ok := flagLabels[f]
	return ok
}

// Label returns the Arabic word for the flag.
func (f Flag) Label() string {
	return flagLabels[f]
}

func (f Flag) String() string {
	return string(f)
}

// IsAttendance reports whether f is absent or excused.
func (f Flag) IsAttendance() bool {
	return f == FlagAbsent || f == FlagExcused
}

// ParseFlag accepts the English name or the Arabic label of a flag.
func ParseFlag(s string) (Flag, bool) {
	s = strings.TrimSpace(s)
	if f := Flag(strings.ToLower(s)); f.IsValid() {
		return f, true
	}
	for f, label := range flagLabels {
		if label == s {
			return f, true
		}
	}
	return "", false
}

// ══════════════════════════════════════════════════════════════════════════════
// STATUS SET
// ══════════════════════════════════════════════════════════════════════════════

// StatusSet is one student's record for one day. The JSON keys are the Arabic
// flag labels so stored data stays compatible with the browser tracker.
//
// Invariant: at most one of Absent and Excused is set, and when either is set
// Memorized and Reviewed are both clear.
type StatusSet struct {
	Memorized bool `json:"حفظ"`
	Reviewed  bool `json:"مراجعة"`
	Absent    bool `json:"غائب"`
	Excused   bool `json:"مستأذن"`
}

// Get returns the value of one flag. Unknown flags read as false.
func (s StatusSet) Get(f Flag) bool {
	switch f {
	case FlagMemorized:
		return s.Memorized
	case FlagReviewed:
		return s.Reviewed
	case FlagAbsent:
		return s.Absent
	case FlagExcused:
		return s.Excused
	default:
		return false
	}
}

// With returns the set after one flag change.
//
// Changing absent or excused resets the whole set first, so clearing absent
// leaves an all-false record. Changing memorized or reviewed clears absent and
// excused and keeps the other of the pair. Unknown flags leave s unchanged.
func (s StatusSet) With(f Flag, value bool) StatusSet {
	if !f.IsValid() {
		return s
	}
	if f.IsAttendance() {
		s = StatusSet{}
	} else {
		s.Absent, s.Excused = false, false
	}

	switch f {
	case FlagAbsent:
		s.Absent = value
	case FlagExcused:
		s.Excused = value
	case FlagMemorized:
		s.Memorized = value
	case FlagReviewed:
		s.Reviewed = value
	}
	return s
}

// Valid reports whether the set satisfies the exclusion invariant.
func (s StatusSet) Valid() bool {
	if s.Absent && s.Excused {
		return false
	}
	if (s.Absent || s.Excused) && (s.Memorized || s.Reviewed) {
		return false
	}
	return true
}

// IsZero reports an unrecorded (all-false) set.
func (s StatusSet) IsZero() bool {
	return s == StatusSet{}
}
