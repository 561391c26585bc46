package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/badr-center/halaqa-tracker/pkg/timeutil"
)

// CivilDate formats t like "الاثنين، ١٩ أكتوبر ٢٠٢٦" in the configured zone.
func CivilDate(t time.Time) string {
	local := t.In(timeutil.Zone())
	return fmt.Sprintf("%s، %s %s %s",
		timeutil.WeekdayNameAr(local),
		ArabicNumber(local.Day()),
		timeutil.MonthNameAr(local.Month()),
		ArabicNumber(local.Year()),
	)
}

// HijriDate is a date in the Islamic calendar.
type HijriDate struct {
	Day   int
	Month string
	Year  int
}

// String formats the date like "٢٦ ربيع الأول 1447 هـ". Only the day uses
// Arabic-Indic digits.
func (h HijriDate) String() string {
	return ArabicNumber(h.Day) + " " + h.Month + " " + strconv.Itoa(h.Year) + " هـ"
}

// HijriSource supplies the Hijri date shown next to a civil date.
type HijriSource interface {
	HijriFor(t time.Time) HijriDate
}

// FixedHijri returns the same configured date for every day. No conversion
// between calendars takes place.
type FixedHijri struct {
	Date HijriDate
}

// DefaultHijri is the placeholder used when nothing is configured.
var DefaultHijri = HijriDate{Day: 26, Month: "ربيع الأول", Year: 1447}

func (f FixedHijri) HijriFor(time.Time) HijriDate {
	return f.Date
}

// DateLine renders "التاريخ: <civil> — <hijri>".
func DateLine(t time.Time, hijri HijriSource) string {
	if hijri == nil {
		hijri = FixedHijri{Date: DefaultHijri}
	}
	return "التاريخ: " + CivilDate(t) + " — " + hijri.HijriFor(t).String()
}
