// Package command contains write operations (CQRS - Commands).
// Besides roster and ledger mutations, which live on the tracker store, these
// are the actions that push state out of the process or pull it in.
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/badr-center/halaqa-tracker/internal/application/query"
	"github.com/badr-center/halaqa-tracker/internal/domain/shared"
	"github.com/badr-center/halaqa-tracker/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SHARE REPORT COMMAND
// Composes the daily message and hands it to one or more sharers (clipboard,
// chat). Every sharer is tried even if an earlier one fails.
// ══════════════════════════════════════════════════════════════════════════════

// Sharer delivers a finished message somewhere.
type Sharer interface {
	Name() string
	Share(ctx context.Context, text string) error
}

// ShareReportCommand names the date and the destinations.
type ShareReportCommand struct {
	Date    time.Time
	Sharers []Sharer
}

// Validate validates the command.
func (c ShareReportCommand) Validate() error {
	if c.Date.IsZero() {
		return errors.New("share_report: date is required")
	}
	return nil
}

// ShareReportResult reports what was sent where.
type ShareReportResult struct {
	Text      string
	Delivered []string
}

// ShareReportHandler handles ShareReportCommand.
type ShareReportHandler struct {
	reports *query.ComposeReportHandler
	log     *logger.Logger
}

// NewShareReportHandler creates a new ShareReportHandler.
func NewShareReportHandler(reports *query.ComposeReportHandler, log *logger.Logger) *ShareReportHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ShareReportHandler{reports: reports, log: log.With(logger.Component("share_report"))}
}

// Handle composes the message and delivers it. The returned error joins the
// failures of individual sharers.
func (h *ShareReportHandler) Handle(ctx context.Context, cmd ShareReportCommand) (*ShareReportResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	result := &ShareReportResult{Text: h.reports.Handle(ctx, cmd.Date)}

	var errs []error
	for _, s := range cmd.Sharers {
		start := time.Now()
		if err := s.Share(ctx, result.Text); err != nil {
			h.log.Error("report delivery failed",
				logger.String("sharer", s.Name()),
				logger.Bool("external", shared.IsExternalService(err)),
				logger.Err(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		h.log.Info("report delivered", logger.String("sharer", s.Name()), logger.Latency(time.Since(start)))
		result.Delivered = append(result.Delivered, s.Name())
	}
	return result, errors.Join(errs...)
}
