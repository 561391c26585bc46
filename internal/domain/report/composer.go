package report

import (
	"strings"
	"time"

	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
	"github.com/badr-center/halaqa-tracker/internal/domain/student"
)

// Defaults for the names printed in the message.
const (
	DefaultHalaqaName  = "زيد بن الدثنة"
	DefaultCenterName  = "مركز بدر لتعليم القرآن الكريم"
	DefaultTeacherName = "خالد البيضي"
)

const (
	greeting    = "السلام عليكم ورحمة الله وبركاته"
	emptyRoster = "لا يوجد طلاب مسجلون في الحلقة."
	checkMark   = "✅"
	crossMark   = "❌"
)

// Composer builds the daily summary message.
type Composer struct {
	HalaqaName string
	CenterName string
	Hijri      HijriSource
}

// NewComposer fills empty names with the defaults.
func NewComposer(halaqa, center string, hijri HijriSource) Composer {
	if halaqa == "" {
		halaqa = DefaultHalaqaName
	}
	if center == "" {
		center = DefaultCenterName
	}
	if hijri == nil {
		hijri = FixedHijri{Date: DefaultHijri}
	}
	return Composer{HalaqaName: halaqa, CenterName: center, Hijri: hijri}
}

// Compose renders the message for date: a greeting header, one numbered line
// per roster student and a footer. Students without an entry for the day are
// shown with both marks crossed.
func (c Composer) Compose(date time.Time, roster []student.Student, day attendance.DayRecord) string {
	var b strings.Builder

	b.WriteString(greeting + "\n")
	b.WriteString("تقرر نتائج حلقة " + c.HalaqaName + " لليوم\n")
	b.WriteString(DateLine(date, c.Hijri) + "\n\n")

	if len(roster) == 0 {
		b.WriteString(emptyRoster + "\n")
	}
	for i, s := range roster {
		b.WriteString(StudentLine(i+1, s.Name, day[s.ID]) + "\n")
	}

	b.WriteString("\n" + c.CenterName + " – إدارة حلقة " + c.HalaqaName)
	return b.String()
}

// StudentLine renders one numbered line of the message.
func StudentLine(n int, name string, s attendance.StatusSet) string {
	prefix := ArabicNumber(n) + ". " + name + " — "
	switch {
	case s.Absent:
		return prefix + attendance.FlagAbsent.Label()
	case s.Excused:
		return prefix + attendance.FlagExcused.Label()
	default:
		return prefix + attendance.FlagMemorized.Label() + ": " + mark(s.Memorized) +
			" — " + attendance.FlagReviewed.Label() + ": " + mark(s.Reviewed)
	}
}

func mark(v bool) string {
	if v {
		return checkMark
	}
	return crossMark
}

// Welcome is the banner shown to the teacher on start.
type Welcome struct {
	Greeting string `json:"greeting"`
	DateLine string `json:"date_line"`
}

// Welcome greets teacher with the date line for today.
func (c Composer) Welcome(teacher string, today time.Time) Welcome {
	if teacher == "" {
		teacher = DefaultTeacherName
	}
	return Welcome{
		Greeting: "مرحباً يا أستاذ " + teacher,
		DateLine: DateLine(today, c.Hijri),
	}
}
