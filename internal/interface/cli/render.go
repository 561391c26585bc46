package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/badr-center/halaqa-tracker/internal/application/query"
	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
	"github.com/badr-center/halaqa-tracker/internal/domain/student"
	"github.com/badr-center/halaqa-tracker/internal/infrastructure/persistence/sqlite"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func renderStudents(w io.Writer, students []student.Student) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, s := range students {
		fmt.Fprintf(tw, "%d\t%s\n", s.ID, s.Name)
	}
	_ = tw.Flush()
}

func renderDay(w io.Writer, view query.DayView) {
	fmt.Fprintln(w, view.DateLabel)
	if view.IsToday {
		fmt.Fprintf(w, "%s (today)\n", view.Date)
	} else {
		fmt.Fprintln(w, view.Date)
	}

	tw := newTable(w)
	fmt.Fprint(tw, "#\tID\tNAME")
	for _, f := range attendance.Flags {
		fmt.Fprintf(tw, "\t%s", f.Label())
	}
	fmt.Fprintln(tw)
	for _, row := range view.Rows {
		fmt.Fprintf(tw, "%s\t%d\t%s", row.IndexLabel, row.Student.ID, row.Student.Name)
		for _, f := range attendance.Flags {
			fmt.Fprintf(tw, "\t%s", box(row.Status.Get(f)))
		}
		fmt.Fprintln(tw)
	}
	_ = tw.Flush()
}

func renderStatus(w io.Writer, s attendance.StatusSet) {
	for i, f := range attendance.Flags {
		if i > 0 {
			fmt.Fprint(w, "  ")
		}
		fmt.Fprintf(w, "%s %s", box(s.Get(f)), f.Label())
	}
	fmt.Fprintln(w)
}

func renderStats(w io.Writer, view query.StatisticsView) {
	tw := newTable(w)
	fmt.Fprint(tw, "NAME")
	for _, s := range view.Series {
		fmt.Fprintf(tw, "\t%s", s.Label)
	}
	fmt.Fprintln(tw)
	for i, name := range view.Categories {
		fmt.Fprint(tw, name)
		for _, s := range view.Series {
			fmt.Fprintf(tw, "\t%d", s.Values[i])
		}
		fmt.Fprintln(tw)
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%d\t%d\n",
		view.Totals.Memorized, view.Totals.Reviewed, view.Totals.Absent, view.Totals.Excused)
	_ = tw.Flush()
}

func box(v bool) string {
	if v {
		return "[x]"
	}
	return "[ ]"
}

func renderBackups(w io.Writer, backups []sqlite.Backup) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSLOT\tREPLACED AT\tBYTES")
	for _, b := range backups {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", b.ID, b.Slot, b.ReplacedAt, len(b.Value))
	}
	_ = tw.Flush()
}
