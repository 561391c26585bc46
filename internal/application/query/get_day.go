// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"

	"github.com/badr-center/halaqa-tracker/internal/application/tracker"
	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
	"github.com/badr-center/halaqa-tracker/internal/domain/calendar"
	"github.com/badr-center/halaqa-tracker/internal/domain/report"
	"github.com/badr-center/halaqa-tracker/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DAY QUERY
// Builds the per-day table: every roster student with the four flags recorded
// for the date the navigator is on.
// ══════════════════════════════════════════════════════════════════════════════

// DayRow is one line of the day table.
type DayRow struct {
	Index      int                  `json:"index"`
	IndexLabel string               `json:"index_label"`
	Student    student.Student      `json:"student"`
	Status     attendance.StatusSet `json:"-"`
	Flags      map[string]bool      `json:"flags"`
}

// DayView is the table for one date.
type DayView struct {
	Date      attendance.DateKey `json:"date"`
	DateLabel string             `json:"date_label"`
	IsToday   bool               `json:"is_today"`
	Rows      []DayRow           `json:"rows"`
}

// GetDayHandler builds DayViews from the store.
type GetDayHandler struct {
	store *tracker.Store
	hijri report.HijriSource
}

// NewGetDayHandler creates a new GetDayHandler.
func NewGetDayHandler(store *tracker.Store, hijri report.HijriSource) *GetDayHandler {
	return &GetDayHandler{store: store, hijri: hijri}
}

// Handle returns the table for the navigator's current date.
func (h *GetDayHandler) Handle(_ context.Context, nav *calendar.Navigator) DayView {
	key := nav.Key()
	roster := h.store.Students()
	day := h.store.ForDate(key)

	view := DayView{
		Date:      key,
		DateLabel: report.DateLine(nav.Current(), h.hijri),
		IsToday:   nav.IsToday(),
		Rows:      make([]DayRow, 0, len(roster)),
	}
	for i, s := range roster {
		status := day[s.ID]
		view.Rows = append(view.Rows, DayRow{
			Index:      i + 1,
			IndexLabel: report.ArabicNumber(i + 1),
			Student:    s,
			Status:     status,
			Flags:      flagMap(status),
		})
	}
	return view
}

func flagMap(s attendance.StatusSet) map[string]bool {
	m := make(map[string]bool, len(attendance.Flags))
	for _, f := range attendance.Flags {
		m[f.String()] = s.Get(f)
	}
	return m
}
