package attendance

import "github.com/badr-center/halaqa-tracker/internal/domain/student"

// Counts is the number of days each flag was set.
type Counts struct {
	Memorized int `json:"memorized"`
	Reviewed  int `json:"reviewed"`
	Absent    int `json:"absent"`
	Excused   int `json:"excused"`
}

// Get returns the count of one flag.
func (c Counts) Get(f Flag) int {
	switch f {
	case FlagMemorized:
		return c.Memorized
	case FlagReviewed:
		return c.Reviewed
	case FlagAbsent:
		return c.Absent
	case FlagExcused:
		return c.Excused
	default:
		return 0
	}
}

func (c *Counts) add(s StatusSet) {
	if s.Memorized {
		c.Memorized++
	}
	if s.Reviewed {
		c.Reviewed++
	}
	if s.Absent {
		c.Absent++
	}
	if s.Excused {
		c.Excused++
	}
}

// StudentStats pairs a roster student with their all-time counts.
type StudentStats struct {
	student.Student
	Counts
}

// Aggregate counts every flag per roster student over all dates. The result
// follows roster order; entries for ids outside the roster are ignored.
func Aggregate(roster []student.Student, ledger Ledger) []StudentStats {
	out := make([]StudentStats, len(roster))
	index := make(map[student.ID]int, len(roster))
	for i, s := range roster {
		out[i].Student = s
		index[s.ID] = i
	}

	for _, day := range ledger {
		for id, s := range day {
			if i, ok := index[id]; ok {
				out[i].Counts.add(s)
			}
		}
	}
	return out
}
