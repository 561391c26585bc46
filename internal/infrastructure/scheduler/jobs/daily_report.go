// Package jobs contains the scheduled jobs of the tracker.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/badr-center/halaqa-tracker/internal/application/command"
	"github.com/badr-center/halaqa-tracker/pkg/logger"
)

// DefaultDailyReportSpec sends the report at 21:00 in the configured zone.
const DefaultDailyReportSpec = "0 21 * * *"

// DailyReportJob composes today's report and sends it to the configured
// sharers.
type DailyReportJob struct {
	share   *command.ShareReportHandler
	sharers []command.Sharer
	clock   func() time.Time
	log     *logger.Logger
}

// NewDailyReportJob creates the job. clock defaults to time.Now.
func NewDailyReportJob(share *command.ShareReportHandler, sharers []command.Sharer, clock func() time.Time, log *logger.Logger) *DailyReportJob {
	if clock == nil {
		clock = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &DailyReportJob{
		share:   share,
		sharers: sharers,
		clock:   clock,
		log:     log.With(logger.Component("daily_report")),
	}
}

func (j *DailyReportJob) Name() string { return "daily_report" }

func (j *DailyReportJob) Description() string {
	return "Sends today's attendance report to the halaqa chat"
}

// Run composes and delivers the report.
func (j *DailyReportJob) Run(ctx context.Context) error {
	if len(j.sharers) == 0 {
		return errors.New("daily_report: no sharers configured")
	}
	res, err := j.share.Handle(ctx, command.ShareReportCommand{Date: j.clock(), Sharers: j.sharers})
	if res != nil {
		j.log.Info("daily report sent", logger.Any("delivered", res.Delivered))
	}
	return err
}
