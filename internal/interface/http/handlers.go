package http

import (
	"bytes"
	"context"
	"net/http"

	"github.com/badr-center/halaqa-tracker/internal/application/command"
	"github.com/badr-center/halaqa-tracker/internal/application/tracker"
	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
	"github.com/badr-center/halaqa-tracker/internal/domain/calendar"
	"github.com/badr-center/halaqa-tracker/internal/domain/shared"
	"github.com/badr-center/halaqa-tracker/internal/domain/student"
	"github.com/badr-center/halaqa-tracker/internal/infrastructure/export"
	"github.com/badr-center/halaqa-tracker/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Healthy {
		writeJSON(w, r, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, r, http.StatusOK, status)
}

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListStudents handles GET /api/v1/students
func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students := s.deps.Store.Students()
	writeJSONWithMeta(w, r, http.StatusOK, students, &ResponseMeta{TotalCount: len(students)})
}

// handleAddStudent handles POST /api/v1/students
func (s *Server) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	var req StudentRequest
	if err := decodeRequest(r, &req); err != nil {
		writeJSONErrorWithDetails(w, r, http.StatusBadRequest, "validation_error", "Invalid request body", err.Error())
		return
	}

	added, ok, err := s.deps.Store.AddStudent(r.Context(), req.Name)
	s.observe("add_student", ok, err)
	if err != nil {
		s.storageError(w, r, "add student", err)
		return
	}
	if !ok {
		writeJSON(w, r, http.StatusOK, map[string]interface{}{"added": false})
		return
	}
	writeJSON(w, r, http.StatusCreated, map[string]interface{}{"added": true, "student": added})
}

// handleRenameStudent handles PUT /api/v1/students/{id}
func (s *Server) handleRenameStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req StudentRequest
	if err := decodeRequest(r, &req); err != nil {
		writeJSONErrorWithDetails(w, r, http.StatusBadRequest, "validation_error", "Invalid request body", err.Error())
		return
	}

	renamed, err := s.deps.Store.RenameStudent(r.Context(), id, req.Name)
	s.observe("rename_student", renamed, err)
	if err != nil {
		s.storageError(w, r, "rename student", err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]interface{}{"renamed": renamed})
}

// handleRemoveStudent handles DELETE /api/v1/students/{id}?confirm=true.
// Without confirm the request is treated as a declined confirmation.
func (s *Server) handleRemoveStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	confirm := getQueryParamBool(r, "confirm")
	deleted, err := s.deps.Store.RemoveStudent(r.Context(), id, tracker.ConfirmFunc(
		func(context.Context, string) (bool, error) { return confirm, nil },
	))
	s.observe("remove_student", deleted, err)
	if err != nil {
		s.storageError(w, r, "remove student", err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]interface{}{"deleted": deleted})
}

// ══════════════════════════════════════════════════════════════════════════════
// ATTENDANCE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetDay handles GET /api/v1/days/{date}. "today" and unparsable dates
// show the startup day.
func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	nav := s.navigator(r.PathValue("date"))
	writeJSON(w, r, http.StatusOK, s.deps.GetDay.Handle(r.Context(), nav))
}

// handleSetFlag handles PUT /api/v1/days/{date}/students/{id}
func (s *Server) handleSetFlag(w http.ResponseWriter, r *http.Request) {
	key, ok := attendance.ParseDateKey(r.PathValue("date"))
	if !ok {
		writeJSONErrorWithDetails(w, r, http.StatusBadRequest, "invalid_date", "Date must be YYYY-MM-DD", shared.ErrInvalidDate.Error())
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req SetFlagRequest
	if err := decodeRequest(r, &req); err != nil {
		writeJSONErrorWithDetails(w, r, http.StatusBadRequest, "validation_error", "Invalid request body", err.Error())
		return
	}
	flag, _ := attendance.ParseFlag(req.Flag)

	status, changed, err := s.deps.Store.SetFlag(r.Context(), key, id, flag, *req.Value)
	s.observe("set_flag", changed, err)
	if err != nil {
		s.storageError(w, r, "set flag", err)
		return
	}

	flags := make(map[string]bool, len(attendance.Flags))
	for _, f := range attendance.Flags {
		flags[f.String()] = status.Get(f)
	}
	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"date":       key,
		"student_id": id,
		"changed":    changed,
		"flags":      flags,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// STATISTICS & REPORT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetStats handles GET /api/v1/stats
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	view := s.deps.GetStatistics.Handle(r.Context())
	writeJSONWithMeta(w, r, http.StatusOK, view, &ResponseMeta{TotalCount: len(view.Students)})
}

// handleExport handles GET /api/v1/export
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	view := s.deps.GetStatistics.Handle(r.Context())
	roster, ledger := s.deps.Store.Snapshot()

	var buf bytes.Buffer
	if err := export.Workbook(&buf, view, roster, ledger); err != nil {
		s.logger.Error("export failed", logger.Err(err))
		writeJSONError(w, r, http.StatusInternalServerError, "export_failed", "Failed to build workbook")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="halaqa-`+attendance.KeyOf(s.deps.Today).String()+`.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}

// handleGetReport handles GET /api/v1/days/{date}/report
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	nav := s.navigator(r.PathValue("date"))
	text := s.deps.Reports.Handle(r.Context(), nav.Current())

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

// handleShareReport handles POST /api/v1/days/{date}/report/share
func (s *Server) handleShareReport(w http.ResponseWriter, r *http.Request) {
	if s.deps.ShareReport == nil || len(s.deps.Sharers) == 0 {
		writeJSONError(w, r, http.StatusNotImplemented, "not_configured", "No report sharers are configured")
		return
	}

	nav := s.navigator(r.PathValue("date"))
	res, err := s.deps.ShareReport.Handle(r.Context(), command.ShareReportCommand{
		Date:    nav.Current(),
		Sharers: s.deps.Sharers,
	})
	if res == nil {
		writeJSONErrorWithDetails(w, r, http.StatusBadRequest, "invalid_request", "Report could not be composed", err.Error())
		return
	}
	if err != nil {
		writeJSONErrorWithDetails(w, r, http.StatusBadGateway, "delivery_failed", "Report delivery failed", err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]interface{}{"delivered": res.Delivered})
}

// handleWelcome handles GET /api/v1/welcome
func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.deps.Reports.Welcome(s.deps.Today))
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// navigator starts at the startup day and jumps to value when it parses.
func (s *Server) navigator(value string) *calendar.Navigator {
	nav := calendar.NewNavigator(s.deps.Today)
	if value != "today" {
		nav.SetDate(value)
	}
	return nav
}

func pathID(w http.ResponseWriter, r *http.Request) (student.ID, bool) {
	id, ok := student.ParseID(r.PathValue("id"))
	if !ok {
		writeJSONError(w, r, http.StatusBadRequest, "invalid_id", "Student id must be a positive integer")
	}
	return id, ok
}

func (s *Server) observe(op string, changed bool, err error) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveMutation(op, changed, err)
	}
}

func (s *Server) storageError(w http.ResponseWriter, r *http.Request, op string, err error) {
	logger.FromContext(r.Context()).Error("operation failed", logger.Operation(op), logger.Err(err))
	writeJSONError(w, r, http.StatusInternalServerError, "storage_error", "Failed to save changes")
}

