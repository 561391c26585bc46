package query

import (
	"context"
	"time"

	"github.com/badr-center/halaqa-tracker/internal/application/tracker"
	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
	"github.com/badr-center/halaqa-tracker/internal/domain/report"
)

// ComposeReportHandler renders the daily message from the store.
type ComposeReportHandler struct {
	store    *tracker.Store
	composer report.Composer
	teacher  string
}

// NewComposeReportHandler creates a new ComposeReportHandler.
func NewComposeReportHandler(store *tracker.Store, composer report.Composer, teacher string) *ComposeReportHandler {
	return &ComposeReportHandler{store: store, composer: composer, teacher: teacher}
}

// Handle composes the message for date.
func (h *ComposeReportHandler) Handle(_ context.Context, date time.Time) string {
	roster := h.store.Students()
	day := h.store.ForDate(attendance.KeyOf(date))
	return h.composer.Compose(date, roster, day)
}

// Welcome returns the teacher's banner for today.
func (h *ComposeReportHandler) Welcome(today time.Time) report.Welcome {
	return h.composer.Welcome(h.teacher, today)
}
