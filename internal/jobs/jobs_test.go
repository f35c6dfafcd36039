package jobs_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"task_portal/internal/auth"
	"task_portal/internal/clock"
	"task_portal/internal/core"
	"task_portal/internal/core/coretest"
	"task_portal/internal/jobs"
	"task_portal/internal/models"
)

func staff(t *testing.T, svc *core.Service, store *coretest.MemoryStore, username string) *auth.Session {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.SeedUser(ctx, core.NewUser{Username: username, Password: "pw", Role: models.RoleStaff}); err != nil {
		t.Fatal(err)
	}
	u, err := store.GetUserByUsername(ctx, username)
	if err != nil {
		t.Fatal(err)
	}
	return &auth.Session{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func TestMissingReportsRun(t *testing.T) {
	ctx := context.Background()
	store := coretest.NewMemoryStore()
	clk := clock.Fake(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	svc := core.NewService(store, clk, time.UTC, slog.New(slog.NewTextHandler(io.Discard, nil)))

	alice := staff(t, svc, store, "alice")
	bob := staff(t, svc, store, "bob")
	staff(t, svc, store, "carol")

	yesterday := svc.Yesterday()
	for _, s := range []*auth.Session{alice, bob} {
		if _, err := svc.CreateTask(ctx, s, core.NewTask{Date: &yesterday, TaskName: "work"}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.SubmitReport(ctx, alice, yesterday); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, nil))
	job, err := jobs.NewMissingReports(log, svc, "0 9 * * *", time.UTC)
	if err != nil {
		t.Fatal(err)
	}

	pending, err := job.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].Username != "bob" {
		t.Fatalf("pending = %+v, want only bob", pending)
	}

	var warned, summary bool
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("log line %q: %v", line, err)
		}
		switch rec["msg"] {
		case "daily report not submitted":
			warned = rec["level"] == "WARN" && rec["username"] == "bob" && rec["date"] == "2024-05-31"
		case "missing reports sweep finished":
			summary = rec["missing"] == float64(1)
		}
	}
	if !warned || !summary {
		t.Fatalf("expected a warning for bob and a summary, got:\n%s", logs.String())
	}
}

type failingSource struct{}

func (failingSource) UnsubmittedReports(context.Context, time.Time) ([]models.UserSummary, error) {
	return nil, errors.New("store down")
}

func (failingSource) Yesterday() time.Time {
	return time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
}

func TestMissingReportsErrors(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := jobs.NewMissingReports(log, failingSource{}, "every now and then", time.UTC); err == nil {
		t.Fatal("invalid cron spec accepted")
	}

	job, err := jobs.NewMissingReports(log, failingSource{}, "@daily", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := job.Run(context.Background()); err == nil {
		t.Fatal("store error swallowed")
	}
}

func TestMissingReportsStartStop(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	job, err := jobs.NewMissingReports(log, failingSource{}, "0 9 * * *", time.UTC)
	if err != nil {
		t.Fatal(err)
	}

	job.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	job.Stop(ctx)
	if ctx.Err() != nil {
		t.Fatal("stop waited for the deadline with no sweep running")
	}
}
