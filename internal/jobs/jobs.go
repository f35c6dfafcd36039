// Package jobs runs the portal's scheduled background work.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"task_portal/internal/core"
	"task_portal/internal/models"
)

// runTimeout bounds one sweep over the store.
const runTimeout = time.Minute

type PendingSource interface {
	UnsubmittedReports(ctx context.Context, date time.Time) ([]models.UserSummary, error)
	Yesterday() time.Time
}

// MissingReports warns about staff who logged tasks yesterday without
// submitting a report.
type MissingReports struct {
	log   *slog.Logger
	src   PendingSource
	cron  *cron.Cron
	jobID cron.EntryID
}

// NewMissingReports schedules the sweep on spec, a standard five-field
// cron expression evaluated in loc. The scheduler is idle until Start.
func NewMissingReports(log *slog.Logger, src PendingSource, spec string, loc *time.Location) (*MissingReports, error) {
	j := &MissingReports{
		log:  log.With("job", "missing_reports"),
		src:  src,
		cron: cron.New(cron.WithLocation(loc)),
	}

	id, err := j.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if _, err := j.Run(ctx); err != nil {
			j.log.Error("missing reports sweep failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule missing reports %q: %w", spec, err)
	}
	j.jobID = id

	return j, nil
}

func (j *MissingReports) Start() {
	next := j.cron.Entry(j.jobID).Schedule.Next(time.Now().In(j.cron.Location()))
	j.cron.Start()
	j.log.Info("missing reports job scheduled", "next", next)
}

// Stop halts the scheduler and waits for a running sweep to finish or
// ctx to end.
func (j *MissingReports) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
	j.log.Info("missing reports job stopped")
}

// Run performs one sweep for yesterday and returns the staff without a
// report.
func (j *MissingReports) Run(ctx context.Context) ([]models.UserSummary, error) {
	day := j.src.Yesterday()
	date := day.Format(core.DateLayout)

	pending, err := j.src.UnsubmittedReports(ctx, day)
	if err != nil {
		return nil, err
	}

	for _, u := range pending {
		attrs := []any{"date", date, "user_id", u.ID, "username", u.Username}
		if u.Position != nil {
			attrs = append(attrs, "position", *u.Position)
		}
		j.log.Warn("daily report not submitted", attrs...)
	}
	j.log.Info("missing reports sweep finished", "date", date, "missing", len(pending))

	return pending, nil
}
