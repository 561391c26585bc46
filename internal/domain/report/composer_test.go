package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
	"github.com/badr-center/halaqa-tracker/internal/domain/student"
)

var monday = time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

func TestArabicDigits(t *testing.T) {
	assert.Equal(t, "١٢٣٤٥٦٧٨٩٠", ArabicDigits("1234567890"))
	assert.Equal(t, "٢٠٢٥-٠١-٠٢", ArabicDigits("2025-01-02"))
	assert.Equal(t, "١٤", ArabicNumber(14))
}

func TestCivilDate(t *testing.T) {
	assert.Equal(t, "الاثنين، ١٩ أكتوبر ٢٠٢٦", CivilDate(monday))
	assert.Equal(t, "الأربعاء، ١ يناير ٢٠٢٥", CivilDate(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestHijriPlaceholder(t *testing.T) {
	assert.Equal(t, "٢٦ ربيع الأول 1447 هـ", DefaultHijri.String())
	h := FixedHijri{Date: HijriDate{Day: 1, Month: "رمضان", Year: 1448}}
	assert.Equal(t, h.Date, h.HijriFor(monday))
}

func TestCompose_EmptyRoster(t *testing.T) {
	c := NewComposer("", "", nil)

	got := c.Compose(monday, nil, nil)

	want := "السلام عليكم ورحمة الله وبركاته\n" +
		"تقرر نتائج حلقة زيد بن الدثنة لليوم\n" +
		"التاريخ: الاثنين، ١٩ أكتوبر ٢٠٢٦ — ٢٦ ربيع الأول 1447 هـ\n\n" +
		"لا يوجد طلاب مسجلون في الحلقة.\n" +
		"\nمركز بدر لتعليم القرآن الكريم – إدارة حلقة زيد بن الدثنة"
	assert.Equal(t, want, got)
}

func TestCompose_StudentLines(t *testing.T) {
	c := NewComposer("الحلقة", "المركز", nil)
	roster := []student.Student{
		{ID: 1, Name: "محمد"},
		{ID: 2, Name: "عائشة"},
		{ID: 3, Name: "علي"},
		{ID: 4, Name: "سارة"},
	}
	day := attendance.DayRecord{
		1: {Memorized: true},
		2: {Absent: true},
		3: {Excused: true},
		99: {Memorized: true},
	}

	lines := strings.Split(c.Compose(monday, roster, day), "\n")

	assert.Equal(t, "١. محمد — حفظ: ✅ — مراجعة: ❌", lines[4])
	assert.Equal(t, "٢. عائشة — غائب", lines[5])
	assert.Equal(t, "٣. علي — مستأذن", lines[6])
	assert.Equal(t, "٤. سارة — حفظ: ❌ — مراجعة: ❌", lines[7])
	assert.Equal(t, "", lines[8])
	assert.Equal(t, "المركز – إدارة حلقة الحلقة", lines[9])
	assert.Len(t, lines, 10)
}

func TestWelcome(t *testing.T) {
	w := NewComposer("", "", nil).Welcome("", monday)
	assert.Equal(t, "مرحباً يا أستاذ خالد البيضي", w.Greeting)
	assert.Equal(t, "التاريخ: الاثنين، ١٩ أكتوبر ٢٠٢٦ — ٢٦ ربيع الأول 1447 هـ", w.DateLine)
}
