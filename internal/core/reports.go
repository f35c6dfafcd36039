package core

import (
	"context"
	"errors"
	"time"

	"task_portal/internal/auth"
	"task_portal/internal/models"
)

// SubmitReport marks the session user's report for date as submitted.
//
// A (date, user) pair has no report until the first submission; later
// submissions only move submittedAt. The deadline and the task count
// are checked on every call.
func (s *Service) SubmitReport(ctx context.Context, sess *auth.Session, date time.Time) (models.DailyReport, error) {
	if err := auth.Authorize(sess, auth.SubmitReport, auth.Resource{}); err != nil {
		return models.DailyReport{}, err
	}

	day := s.dayOf(date)
	now := s.clock.Now()
	if now.After(submissionDeadline(day)) {
		return models.DailyReport{}, ErrDeadlinePassed
	}

	n, err := s.db.CountTasks(ctx, sess.UserID, day)
	if err != nil {
		return models.DailyReport{}, err
	}
	if n == 0 {
		return models.DailyReport{}, ErrNoTasksToSubmit
	}

	existing, err := s.db.FindReport(ctx, sess.UserID, day)
	switch {
	case err == nil:
		return s.db.MarkReportSubmitted(ctx, existing.ID, now)
	case !errors.Is(err, ErrNotFound):
		return models.DailyReport{}, err
	}

	submittedAt := now
	r, err := s.db.CreateReport(ctx, models.DailyReport{
		Date:        s.noonOf(day),
		UserID:      sess.UserID,
		Submitted:   true,
		SubmittedAt: &submittedAt,
		CreatedAt:   now,
	})
	if errors.Is(err, ErrReportConflict) {
		s.log.Warn("concurrent report submission", "user_id", sess.UserID, "date", day.From.Format(DateLayout))
	}
	return r, err
}

// WithdrawReport deletes the session user's report for date. Nothing is
// kept; submitting again afterwards creates a new report.
func (s *Service) WithdrawReport(ctx context.Context, sess *auth.Session, date time.Time) error {
	if err := auth.Authorize(sess, auth.SubmitReport, auth.Resource{}); err != nil {
		return err
	}

	day := s.dayOf(date)
	r, err := s.db.FindReport(ctx, sess.UserID, day)
	if err != nil {
		return err
	}
	if err := s.db.DeleteReport(ctx, r.ID); err != nil {
		return err
	}

	s.log.Info("report withdrawn", "report_id", r.ID, "user_id", sess.UserID, "date", day.From.Format(DateLayout))
	return nil
}

// ListReports returns the admin listing for admins and the caller's own
// reports, newest day first, for everyone else. Only admin entries carry
// User and Tasks; Tasks is then never nil.
func (s *Service) ListReports(ctx context.Context, sess *auth.Session, date *time.Time) ([]models.ReportEntry, error) {
	if err := auth.Authorize(sess, auth.ReadReports, auth.Resource{}); err != nil {
		return nil, err
	}
	if auth.Can(sess, auth.ReviewReports, auth.Resource{}) {
		return s.reviewReports(ctx, date)
	}

	uid := sess.UserID
	f := ReportFilter{UserID: &uid, Order: OrderByDate}
	if date != nil {
		day := s.dayOf(*date)
		f.Day = &day
	}

	entries, err := s.db.ListReports(ctx, f)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].User = nil
		entries[i].Tasks = nil
	}
	return entries, nil
}

// ReviewReports is the admin listing: every user's reports with the
// author and that day's tasks, latest submission first.
func (s *Service) ReviewReports(ctx context.Context, sess *auth.Session, date *time.Time) ([]models.ReportEntry, error) {
	if err := auth.Authorize(sess, auth.ReviewReports, auth.Resource{}); err != nil {
		return nil, err
	}
	return s.reviewReports(ctx, date)
}

func (s *Service) reviewReports(ctx context.Context, date *time.Time) ([]models.ReportEntry, error) {
	f := ReportFilter{Order: OrderBySubmittedAt}
	if date != nil {
		day := s.dayOf(*date)
		f.Day = &day
	}

	entries, err := s.db.ListReports(ctx, f)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		uid := entries[i].UserID
		day := s.dayOf(entries[i].Date)
		tasks, err := s.db.ListTasks(ctx, TaskFilter{UserID: &uid, Day: &day})
		if err != nil {
			return nil, err
		}
		if tasks == nil {
			tasks = []models.Task{}
		}
		entries[i].Tasks = tasks
	}
	return entries, nil
}

// PendingReports lists staff who logged tasks on date but have not
// submitted a report for it.
func (s *Service) PendingReports(ctx context.Context, sess *auth.Session, date time.Time) ([]models.UserSummary, error) {
	if err := auth.Authorize(sess, auth.ReviewReports, auth.Resource{}); err != nil {
		return nil, err
	}
	return s.UnsubmittedReports(ctx, date)
}

// UnsubmittedReports is PendingReports without a session, for
// background jobs.
func (s *Service) UnsubmittedReports(ctx context.Context, date time.Time) ([]models.UserSummary, error) {
	day := s.dayOf(date)

	staff, err := s.db.ListUsers(ctx, models.RoleStaff)
	if err != nil {
		return nil, err
	}

	pending := make([]models.UserSummary, 0)
	for _, u := range staff {
		n, err := s.db.CountTasks(ctx, u.ID, day)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			continue
		}

		_, err = s.db.FindReport(ctx, u.ID, day)
		switch {
		case errors.Is(err, ErrNotFound):
			pending = append(pending, u.Summary())
		case err != nil:
			return nil, err
		}
	}
	return pending, nil
}

// Yesterday is the report day that closes its grace window next.
func (s *Service) Yesterday() time.Time {
	return s.today().From.AddDate(0, 0, -1)
}
