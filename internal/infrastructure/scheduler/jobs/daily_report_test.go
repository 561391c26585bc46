package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badr-center/halaqa-tracker/internal/application/command"
	"github.com/badr-center/halaqa-tracker/internal/application/query"
	"github.com/badr-center/halaqa-tracker/internal/application/tracker"
	"github.com/badr-center/halaqa-tracker/internal/domain/report"
	"github.com/badr-center/halaqa-tracker/internal/infrastructure/persistence/memory"
	"github.com/badr-center/halaqa-tracker/internal/infrastructure/scheduler"
)

type captureSharer struct{ texts []string }

func (c *captureSharer) Name() string { return "capture" }
func (c *captureSharer) Share(_ context.Context, text string) error {
	c.texts = append(c.texts, text)
	return nil
}

func newShareHandler(t *testing.T) *command.ShareReportHandler {
	t.Helper()
	store := tracker.New(tracker.Options{Storage: memory.NewStorage()})
	require.NoError(t, store.Load(context.Background()))
	reports := query.NewComposeReportHandler(store, report.NewComposer("", "", nil), "")
	return command.NewShareReportHandler(reports, nil)
}

func TestDailyReportJob_RunsThroughScheduler(t *testing.T) {
	sink := &captureSharer{}
	today := time.Date(2026, time.October, 19, 21, 0, 0, 0, time.UTC)
	job := NewDailyReportJob(newShareHandler(t), []command.Sharer{sink}, func() time.Time { return today }, nil)

	s := scheduler.New(scheduler.DefaultConfig())
	require.NoError(t, s.Register(job, DefaultDailyReportSpec))

	res, err := s.RunNow(context.Background(), job.Name())
	require.NoError(t, err)
	require.True(t, res.Success, "%v", res.Error)

	require.Len(t, sink.texts, 1)
	assert.Contains(t, sink.texts[0], report.DefaultHalaqaName)
	assert.Contains(t, sink.texts[0], report.CivilDate(today))
}

func TestDailyReportJob_NoSharers(t *testing.T) {
	job := NewDailyReportJob(newShareHandler(t), nil, nil, nil)
	assert.Error(t, job.Run(context.Background()))
}
