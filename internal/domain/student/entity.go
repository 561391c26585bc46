package student

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// ID identifies a student for the lifetime of the roster.
type ID int64

// IsValid reports whether the id is positive.
func (id ID) IsValid() bool {
	return id > 0
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses a decimal student id.
func ParseID(s string) (ID, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return ID(n), true
}

// NextID derives a fresh id from the creation time. When two students are
// added within the same millisecond, or the clock is behind the largest id
// already handed out, the id is bumped past last.
func NextID(now time.Time, last ID) ID {
	id := ID(now.UnixMilli())
	if id <= last {
		id = last + 1
	}
	return id
}

// NormalizeName trims surrounding whitespace and applies Unicode NFC.
// The second result is false when nothing is left.
func NormalizeName(raw string) (string, bool) {
	name := norm.NFC.String(strings.TrimSpace(raw))
	return name, name != ""
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Student is one member of the halaqa.
type Student struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// DefaultRoster returns the students the tracker starts with when nothing has
// been persisted yet.
func DefaultRoster() []Student {
	return []Student{
		{ID: 1, Name: "محمد أحمد"},
		{ID: 2, Name: "عائشة خالد"},
		{ID: 3, Name: "علي حسن"},
		{ID: 4, Name: "سارة محمود"},
	}
}
