package attendance

import (
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badr-center/halaqa-tracker/internal/domain/student"
)

func TestStatusSet_With(t *testing.T) {
	tests := []struct {
		name  string
		start StatusSet
		flag  Flag
		value bool
		want  StatusSet
	}{
		{"absent clears everything", StatusSet{Memorized: true, Reviewed: true}, FlagAbsent, true, StatusSet{Absent: true}},
		{"excused replaces absent", StatusSet{Absent: true}, FlagExcused, true, StatusSet{Excused: true}},
		{"unchecking absent leaves nothing", StatusSet{Absent: true}, FlagAbsent, false, StatusSet{}},
		{"memorized clears absent", StatusSet{Absent: true}, FlagMemorized, true, StatusSet{Memorized: true}},
		{"reviewed keeps memorized", StatusSet{Memorized: true}, FlagReviewed, true, StatusSet{Memorized: true, Reviewed: true}},
		{"unchecking memorized keeps reviewed", StatusSet{Memorized: true, Reviewed: true}, FlagMemorized, false, StatusSet{Reviewed: true}},
		{"unknown flag is ignored", StatusSet{Reviewed: true}, Flag("late"), true, StatusSet{Reviewed: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.start.With(tt.flag, tt.value))
		})
	}
}

func TestStatusSet_InvariantHoldsForAnySequence(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	var s StatusSet

	for i := 0; i < 10000; i++ {
		f := Flags[rng.IntN(len(Flags))]
		s = s.With(f, rng.IntN(2) == 1)
		require.True(t, s.Valid(), "invalid set %+v after step %d", s, i)
	}
}

func TestStatusSet_ArabicJSONKeys(t *testing.T) {
	data, err := json.Marshal(StatusSet{Memorized: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"حفظ":true,"مراجعة":false,"غائب":false,"مستأذن":false}`, string(data))
}

func TestParseFlag(t *testing.T) {
	for in, want := range map[string]Flag{
		"memorized": FlagMemorized,
		"Reviewed":  FlagReviewed,
		"غائب":      FlagAbsent,
		" مستأذن ":  FlagExcused,
	} {
		got, ok := ParseFlag(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseFlag("late")
	assert.False(t, ok)
}

func TestParseDateKey(t *testing.T) {
	d, ok := ParseDateKey("2024-12-31")
	assert.True(t, ok)
	assert.Equal(t, DateKey("2024-12-31"), d)

	for _, bad := range []string{"not-a-date", "2024-13-01", "2024-1-1", ""} {
		_, ok := ParseDateKey(bad)
		assert.False(t, ok, bad)
	}
}

func TestLedger_StatusIsTotal(t *testing.T) {
	l := NewLedger()
	assert.Equal(t, StatusSet{}, l.Status("2025-01-01", 1))
	assert.Empty(t, l.ForDate("2025-01-01"))
}

func TestLedger_SetFlagAndForDate(t *testing.T) {
	l := NewLedger()

	got := l.SetFlag("2025-01-01", 1, FlagMemorized, true)
	assert.Equal(t, StatusSet{Memorized: true}, got)
	l.SetFlag("2025-01-01", 2, FlagAbsent, true)

	day := l.ForDate("2025-01-01")
	assert.Equal(t, DayRecord{1: {Memorized: true}, 2: {Absent: true}}, day)

	day[1] = StatusSet{}
	assert.Equal(t, StatusSet{Memorized: true}, l.Status("2025-01-01", 1), "ForDate returns a copy")

	assert.Equal(t, StatusSet{}, l.SetFlag("2025-01-03", 1, Flag("late"), true))
	assert.NotContains(t, l, DateKey("2025-01-03"))
}

func TestLedger_RemoveStudentCascades(t *testing.T) {
	l := NewLedger()
	l.SetFlag("2025-01-01", 1, FlagMemorized, true)
	l.SetFlag("2025-01-01", 2, FlagReviewed, true)
	l.SetFlag("2025-01-02", 2, FlagAbsent, true)

	assert.Equal(t, 2, l.RemoveStudent(2))

	for _, d := range l.Dates() {
		assert.NotContains(t, l[d], student.ID(2))
	}
	assert.Equal(t, []DateKey{"2025-01-01", "2025-01-02"}, l.Dates())
	assert.Equal(t, 1, l.Entries())
}

func TestAggregate(t *testing.T) {
	roster := []student.Student{{ID: 1, Name: "أ"}, {ID: 2, Name: "ب"}}
	l := NewLedger()
	l.SetFlag("2025-01-01", 1, FlagMemorized, true)
	l.SetFlag("2025-01-02", 1, FlagAbsent, true)
	l.SetFlag("2025-01-02", 99, FlagExcused, true)

	stats := Aggregate(roster, l)
	require.Len(t, stats, 2)

	assert.Equal(t, student.ID(1), stats[0].ID)
	assert.Equal(t, Counts{Memorized: 1, Absent: 1}, stats[0].Counts)
	assert.Equal(t, Counts{}, stats[1].Counts)
}

func TestStudentStats_FlatJSON(t *testing.T) {
	data, err := json.Marshal(StudentStats{
		Student: student.Student{ID: 7, Name: "سارة"},
		Counts:  Counts{Reviewed: 3},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"name":"سارة","memorized":0,"reviewed":3,"absent":0,"excused":0}`, string(data))
}
