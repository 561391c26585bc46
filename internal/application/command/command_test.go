package command

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badr-center/halaqa-tracker/internal/application/query"
	"github.com/badr-center/halaqa-tracker/internal/application/tracker"
	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
	"github.com/badr-center/halaqa-tracker/internal/domain/report"
	"github.com/badr-center/halaqa-tracker/internal/infrastructure/persistence/memory"
)

type recordingSharer struct {
	name string
	err  error
	got  string
}

func (r *recordingSharer) Name() string { return r.name }

func (r *recordingSharer) Share(_ context.Context, text string) error {
	r.got = text
	return r.err
}

func loadedStore(t *testing.T) *tracker.Store {
	t.Helper()
	s := tracker.New(tracker.Options{Storage: memory.NewStorage()})
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestShareReport_DeliversToEverySharer(t *testing.T) {
	ctx := context.Background()
	store := loadedStore(t)
	_, _, err := store.SetFlag(ctx, "2025-01-01", 2, attendance.FlagAbsent, true)
	require.NoError(t, err)

	reports := query.NewComposeReportHandler(store, report.NewComposer("", "", nil), "")
	h := NewShareReportHandler(reports, nil)

	clip := &recordingSharer{name: "clipboard"}
	chat := &recordingSharer{name: "telegram", err: errors.New("bot blocked")}

	res, err := h.Handle(ctx, ShareReportCommand{
		Date:    time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		Sharers: []Sharer{chat, clip},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram: bot blocked")
	require.NotNil(t, res)
	assert.Equal(t, []string{"clipboard"}, res.Delivered)
	assert.Equal(t, res.Text, clip.got)
	assert.Equal(t, res.Text, chat.got)
	assert.True(t, strings.Contains(res.Text, "٢. عائشة خالد — غائب"))
}

func TestShareReport_RequiresDate(t *testing.T) {
	h := NewShareReportHandler(nil, nil)
	_, err := h.Handle(context.Background(), ShareReportCommand{})
	assert.Error(t, err)
}

func TestImportData_BrowserDump(t *testing.T) {
	ctx := context.Background()
	store := loadedStore(t)
	h := NewImportDataHandler(store)

	dump := []byte(`{
		"students": "[{\"id\":10,\"name\":\"بلال\"}]",
		"dailyRecords": "{\"2025-02-01\":{\"10\":{\"حفظ\":false,\"مراجعة\":false,\"غائب\":true,\"مستأذن\":false}}}",
		"theme": "dark"
	}`)
	require.NoError(t, h.Handle(ctx, ImportDataCommand{Dump: dump}))

	students := store.Students()
	require.Len(t, students, 1)
	assert.Equal(t, "بلال", students[0].Name)
	assert.Equal(t, attendance.StatusSet{Absent: true}, store.Status("2025-02-01", 10))
}

func TestImportData_RawSlots(t *testing.T) {
	ctx := context.Background()
	store := loadedStore(t)
	h := NewImportDataHandler(store)

	err := h.Handle(ctx, ImportDataCommand{Records: []byte(`{"2025-02-02":{"1":{"حفظ":true}}}`)})
	require.NoError(t, err)

	assert.Len(t, store.Students(), 4, "missing students slot falls back to the seed roster")
	assert.True(t, store.Status("2025-02-02", 1).Memorized)

	assert.Error(t, h.Handle(ctx, ImportDataCommand{}))
}
