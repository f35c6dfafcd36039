package core_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"task_portal/internal/auth"
	"task_portal/internal/clock"
	"task_portal/internal/core"
	"task_portal/internal/core/coretest"
	"task_portal/internal/models"
)

type fixture struct {
	svc   *core.Service
	store *coretest.MemoryStore
	clock *clock.FakeClock

	admin *auth.Session
	alice *auth.Session
	bob   *auth.Session
}

// newFixture starts the clock at 2024-06-01 10:00 UTC with one admin and
// two staff members.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureIn(t, time.UTC)
}

func newFixtureIn(t *testing.T, loc *time.Location) *fixture {
	t.Helper()

	f := &fixture{
		store: coretest.NewMemoryStore(),
		clock: clock.Fake(time.Date(2024, 6, 1, 10, 0, 0, 0, loc)),
	}
	f.svc = core.NewService(f.store, f.clock, loc, discardLogger())

	f.admin = f.seed(t, "root", models.RoleAdmin, nil)
	designer := models.PositionGraphicDesign
	f.alice = f.seed(t, "alice", models.RoleStaff, &designer)
	f.bob = f.seed(t, "bob", models.RoleStaff, nil)
	return f
}

func (f *fixture) seed(t *testing.T, username string, role models.Role, pos *models.Position) *auth.Session {
	t.Helper()

	ctx := context.Background()
	created, err := f.svc.SeedUser(ctx, core.NewUser{Username: username, Password: username + "-pw", Role: role, Position: pos})
	if err != nil || !created {
		t.Fatalf("seed %s: created=%v err=%v", username, created, err)
	}
	u, err := f.store.GetUserByUsername(ctx, username)
	if err != nil {
		t.Fatalf("lookup %s: %v", username, err)
	}
	return &auth.Session{UserID: u.ID, Username: u.Username, Role: u.Role, ExpiresAt: f.clock.Now().Add(auth.SessionTTL)}
}

func (f *fixture) date(t *testing.T, v string) time.Time {
	t.Helper()
	d, err := f.svc.ParseDate(v)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", v, err)
	}
	return d
}

func (f *fixture) task(t *testing.T, sess *auth.Session, date, name string) models.Task {
	t.Helper()
	d := f.date(t, date)
	task, err := f.svc.CreateTask(context.Background(), sess, core.NewTask{Date: &d, TaskName: name})
	if err != nil {
		t.Fatalf("CreateTask(%s, %q): %v", date, name, err)
	}
	return task
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }
