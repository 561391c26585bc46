package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/badr-center/halaqa-tracker/internal/application/query"
	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
	"github.com/badr-center/halaqa-tracker/internal/domain/student"
)

func TestWorkbook(t *testing.T) {
	roster := []student.Student{{ID: 1, Name: "محمد أحمد"}, {ID: 2, Name: "عائشة خالد"}}
	ledger := attendance.NewLedger()
	ledger.SetFlag("2025-01-02", 1, attendance.FlagMemorized, true)
	ledger.SetFlag("2025-01-01", 2, attendance.FlagAbsent, true)
	ledger.SetFlag("2025-01-01", 99, attendance.FlagAbsent, true)

	view := query.BuildStatisticsView(attendance.Aggregate(roster, ledger))

	var buf bytes.Buffer
	require.NoError(t, Workbook(&buf, view, roster, ledger))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetStatistics, SheetRecords}, f.GetSheetList())

	stats, err := f.GetRows(SheetStatistics)
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, []string{"الطالب", "حفظ", "مراجعة", "غائب", "مستأذن"}, stats[0])
	assert.Equal(t, []string{"محمد أحمد", "1", "0", "0", "0"}, stats[1])
	assert.Equal(t, []string{"عائشة خالد", "0", "0", "1", "0"}, stats[2])

	records, err := f.GetRows(SheetRecords)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2025-01-01", records[1][0])
	assert.Equal(t, "عائشة خالد", records[1][1])
	assert.Equal(t, "TRUE", records[1][4])
	assert.Equal(t, "2025-01-02", records[2][0])
}

func TestWorkbook_EmptyRoster(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Workbook(&buf, query.BuildStatisticsView(nil), nil, attendance.NewLedger()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetStatistics)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
