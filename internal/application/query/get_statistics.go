package query

import (
	"context"

	"github.com/badr-center/halaqa-tracker/internal/application/tracker"
	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STATISTICS QUERY
// Per-student counts for the stat cards plus the same numbers laid out as
// chart series (one series per flag, one category per student).
// ══════════════════════════════════════════════════════════════════════════════

// ChartSeries is one bar series of the statistics chart.
type ChartSeries struct {
	Flag   attendance.Flag `json:"flag"`
	Label  string          `json:"label"`
	Values []int           `json:"values"`
}

// StatisticsView is the aggregated statistics of the halaqa.
type StatisticsView struct {
	Students   []attendance.StudentStats `json:"students"`
	Totals     attendance.Counts         `json:"totals"`
	Categories []string                  `json:"categories"`
	Series     []ChartSeries             `json:"series"`
}

// GetStatisticsHandler reads statistics from the store.
type GetStatisticsHandler struct {
	store *tracker.Store
}

// NewGetStatisticsHandler creates a new GetStatisticsHandler.
func NewGetStatisticsHandler(store *tracker.Store) *GetStatisticsHandler {
	return &GetStatisticsHandler{store: store}
}

// Handle returns the statistics view.
func (h *GetStatisticsHandler) Handle(ctx context.Context) StatisticsView {
	return BuildStatisticsView(h.store.Statistics(ctx))
}

// BuildStatisticsView derives totals and chart series from per-student stats.
func BuildStatisticsView(stats []attendance.StudentStats) StatisticsView {
	view := StatisticsView{
		Students:   stats,
		Categories: make([]string, len(stats)),
		Series:     make([]ChartSeries, len(attendance.Flags)),
	}
	for j, f := range attendance.Flags {
		view.Series[j] = ChartSeries{Flag: f, Label: f.Label(), Values: make([]int, len(stats))}
	}

	for i, s := range stats {
		view.Categories[i] = s.Name
		for j, f := range attendance.Flags {
			view.Series[j].Values[i] = s.Counts.Get(f)
		}
		view.Totals.Memorized += s.Memorized
		view.Totals.Reviewed += s.Reviewed
		view.Totals.Absent += s.Absent
		view.Totals.Excused += s.Excused
	}
	return view
}
