// Package export writes the halaqa's statistics and daily records to an xlsx
// workbook, with the statistics chart rendered as a clustered bar chart.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/badr-center/halaqa-tracker/internal/application/query"
	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
	"github.com/badr-center/halaqa-tracker/internal/domain/student"
)

// Sheet names. Kept ASCII so chart ranges need no quoting.
const (
	SheetStatistics = "Statistics"
	SheetRecords    = "Records"
)

const (
	headerStudent = "الطالب"
	headerDate    = "التاريخ"
	chartTitle    = "إحصائيات الحلقة"
)

// Workbook writes the export to w.
func Workbook(w io.Writer, view query.StatisticsView, roster []student.Student, ledger attendance.Ledger) error {
	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with "Sheet1".
	f.SetSheetName("Sheet1", SheetStatistics)
	if _, err := f.NewSheet(SheetRecords); err != nil {
		return fmt.Errorf("export: create sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: style: %w", err)
	}

	if err := writeStatistics(f, view, header); err != nil {
		return err
	}
	if err := writeRecords(f, roster, ledger, header); err != nil {
		return err
	}

	rtl := true
	for _, sheet := range []string{SheetStatistics, SheetRecords} {
		if err := f.SetSheetView(sheet, -1, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
			return fmt.Errorf("export: sheet view: %w", err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write: %w", err)
	}
	return nil
}

func writeStatistics(f *excelize.File, view query.StatisticsView, header int) error {
	row := []interface{}{headerStudent}
	for _, s := range view.Series {
		row = append(row, s.Label)
	}
	if err := f.SetSheetRow(SheetStatistics, "A1", &row); err != nil {
		return fmt.Errorf("export: statistics header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(row), 1)
	if err := f.SetCellStyle(SheetStatistics, "A1", last, header); err != nil {
		return fmt.Errorf("export: statistics header style: %w", err)
	}

	for i, name := range view.Categories {
		values := []interface{}{name}
		for _, s := range view.Series {
			values = append(values, s.Values[i])
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetStatistics, cell, &values); err != nil {
			return fmt.Errorf("export: statistics row: %w", err)
		}
	}
	if err := f.SetColWidth(SheetStatistics, "A", "A", 24); err != nil {
		return fmt.Errorf("export: column width: %w", err)
	}

	if len(view.Categories) == 0 {
		return nil
	}
	return addChart(f, view)
}

func addChart(f *excelize.File, view query.StatisticsView) error {
	lastRow := len(view.Categories) + 1
	categories := fmt.Sprintf("%s!$A$2:$A$%d", SheetStatistics, lastRow)

	series := make([]excelize.ChartSeries, 0, len(view.Series))
	for j := range view.Series {
		col, err := excelize.ColumnNumberToName(j + 2)
		if err != nil {
			return fmt.Errorf("export: chart column: %w", err)
		}
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", SheetStatistics, col),
			Categories: categories,
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", SheetStatistics, col, col, lastRow),
		})
	}

	anchor, _ := excelize.CoordinatesToCellName(len(view.Series)+3, 2)
	if err := f.AddChart(SheetStatistics, anchor, &excelize.Chart{
		Type:   excelize.Col,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: chartTitle}},
	}); err != nil {
		return fmt.Errorf("export: chart: %w", err)
	}
	return nil
}

// writeRecords lists one row per stored (date, student) entry of a roster
// student, oldest date first and in roster order within a date.
func writeRecords(f *excelize.File, roster []student.Student, ledger attendance.Ledger, header int) error {
	row := []interface{}{headerDate, headerStudent}
	for _, flag := range attendance.Flags {
		row = append(row, flag.Label())
	}
	if err := f.SetSheetRow(SheetRecords, "A1", &row); err != nil {
		return fmt.Errorf("export: records header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(row), 1)
	if err := f.SetCellStyle(SheetRecords, "A1", last, header); err != nil {
		return fmt.Errorf("export: records header style: %w", err)
	}

	r := 2
	for _, date := range ledger.Dates() {
		day := ledger[date]
		for _, s := range roster {
			status, ok := day[s.ID]
			if !ok {
				continue
			}
			values := []interface{}{date.String(), s.Name}
			for _, flag := range attendance.Flags {
				values = append(values, status.Get(flag))
			}
			cell, _ := excelize.CoordinatesToCellName(1, r)
			if err := f.SetSheetRow(SheetRecords, cell, &values); err != nil {
				return fmt.Errorf("export: records row: %w", err)
			}
			r++
		}
	}
	if err := f.SetColWidth(SheetRecords, "A", "B", 20); err != nil {
		return fmt.Errorf("export: column width: %w", err)
	}
	return nil
}
