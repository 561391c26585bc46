// Package student holds the roster side of the halaqa model.
//
// A Student is an identifier plus a display name. Identifiers come from the
// creation timestamp in milliseconds and never change; names are trimmed and
// NFC-normalised so that the same Arabic name typed on two keyboards compares
// equal.
//
// The Roster keeps students in insertion order. Its mutators report whether
// anything changed instead of returning validation errors: a blank name or an
// unknown id is simply ignored.
//
//	r := student.NewRoster(student.DefaultRoster())
//	s, ok := r.Add("  يوسف  ", time.Now())
//	r.Rename(s.ID, "يوسف علي")
//	r.Remove(s.ID)
package student
