package web

import (
	"fmt"
	"net/http"

	"task_portal/internal/auth"
	"task_portal/internal/core"
	"task_portal/internal/export"
	"task_portal/internal/models"
)

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, auth.ReadReports) {
		return
	}

	date, err := s.queryDate(r)
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}

	ctx, cancel := s.ctx(r)
	defer cancel()

	sess := sessionFrom(r.Context())
	reports, err := s.svc.ListReports(ctx, sess, date)
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	if sess.IsAdmin() {
		writeJSON(w, reports, http.StatusOK)
		return
	}

	own := make([]models.DailyReport, 0, len(reports))
	for _, e := range reports {
		own = append(own, e.DailyReport)
	}
	writeJSON(w, own, http.StatusOK)
}

func (s *Server) submitReport(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, auth.SubmitReport) {
		return
	}

	var in submitReportIn
	if err := s.decode(w, r, &in); err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	date, err := s.svc.ParseDate(in.Date)
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}

	ctx, cancel := s.ctx(r)
	defer cancel()

	report, err := s.svc.SubmitReport(ctx, sessionFrom(r.Context()), date)
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	writeJSON(w, report, http.StatusCreated)
}

func (s *Server) withdrawReport(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, auth.SubmitReport) {
		return
	}

	date, err := s.queryDate(r)
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	if date == nil {
		writeErr(s.log, w, r, fmt.Errorf("%w: date is required", core.ErrInvalidArgs))
		return
	}

	ctx, cancel := s.ctx(r)
	defer cancel()

	if err := s.svc.WithdrawReport(ctx, sessionFrom(r.Context()), *date); err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	writeOK(w)
}

// pendingReports lists staff who logged tasks on date (yesterday when
// omitted) without submitting a report.
func (s *Server) pendingReports(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, auth.ReviewReports) {
		return
	}

	date, err := s.queryDate(r)
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	day := s.svc.Yesterday()
	if date != nil {
		day = *date
	}

	ctx, cancel := s.ctx(r)
	defer cancel()

	users, err := s.svc.PendingReports(ctx, sessionFrom(r.Context()), day)
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	writeJSON(w, users, http.StatusOK)
}

func (s *Server) exportReports(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, auth.ReviewReports) {
		return
	}

	date, err := s.queryDate(r)
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}

	ctx, cancel := s.ctx(r)
	defer cancel()

	entries, err := s.svc.ReviewReports(ctx, sessionFrom(r.Context()), date)
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}

	buf, err := export.Reports(entries, s.svc.Location())
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}

	name := "reports-all.xlsx"
	if date != nil {
		name = "reports-" + date.Format(core.DateLayout) + ".xlsx"
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
