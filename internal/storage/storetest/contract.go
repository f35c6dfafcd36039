// Package storetest checks a core.Store implementation against the
// behaviour the service relies on.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"task_portal/internal/core"
	"task_portal/internal/models"
)

// Run executes the store contract. open must return an empty store.
func Run(t *testing.T, open func(t *testing.T) core.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("tasks", func(t *testing.T) { testTasks(t, open(t)) })
	t.Run("reports", func(t *testing.T) { testReports(t, open(t)) })
	t.Run("cascade", func(t *testing.T) { testCascade(t, open(t)) })
}

var created = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func mustUser(t *testing.T, s core.Store, name string, role models.Role) models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), models.User{
		Username:  name,
		Password:  "hash-" + name,
		Role:      role,
		CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	if u.ID == 0 {
		t.Fatalf("create user %s: no id assigned", name)
	}
	return u
}

func mustTask(t *testing.T, s core.Store, userID int64, date time.Time, name string) models.Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), models.Task{Date: date, TaskName: name, UserID: userID})
	if err != nil {
		t.Fatalf("create task %s: %v", name, err)
	}
	return task
}

func day(y int, m time.Month, d int) core.DayRange {
	return core.DayRange{
		From: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		To:   time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC),
	}
}

func testUsers(t *testing.T, s core.Store) {
	ctx := context.Background()

	designer := models.PositionGraphicDesign
	alice, err := s.CreateUser(ctx, models.User{Username: "alice", Password: "h", Role: models.RoleStaff, Position: &designer, CreatedAt: created})
	if err != nil {
		t.Fatal(err)
	}
	mustUser(t, s, "root", models.RoleAdmin)
	mustUser(t, s, "bob", models.RoleStaff)

	if _, err := s.CreateUser(ctx, models.User{Username: "alice", Password: "h", Role: models.RoleStaff, CreatedAt: created}); !errors.Is(err, core.ErrUsernameTaken) {
		t.Fatalf("duplicate username: got %v", err)
	}

	got, err := s.GetUser(ctx, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Username != "alice" || got.Role != models.RoleStaff || got.Position == nil || *got.Position != designer {
		t.Fatalf("GetUser = %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("createdAt = %v, want %v", got.CreatedAt, created)
	}

	byName, err := s.GetUserByUsername(ctx, "alice")
	if err != nil || byName.ID != alice.ID || byName.Password != "h" {
		t.Fatalf("GetUserByUsername = %+v, %v", byName, err)
	}
	if _, err := s.GetUserByUsername(ctx, "nobody"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unknown username: got %v", err)
	}
	if _, err := s.GetUser(ctx, 424242); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unknown id: got %v", err)
	}

	staff, err := s.ListUsers(ctx, models.RoleStaff)
	if err != nil {
		t.Fatal(err)
	}
	if len(staff) != 2 || staff[0].Username != "alice" || staff[1].Username != "bob" {
		t.Fatalf("ListUsers(staff) = %+v", staff)
	}
	all, err := s.ListUsers(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("ListUsers(all) = %d users, want 3", len(all))
	}

	got.Username = "alice2"
	got.Position = nil
	updated, err := s.UpdateUser(ctx, got)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Username != "alice2" || updated.Position != nil {
		t.Fatalf("UpdateUser = %+v", updated)
	}

	updated.Username = "bob"
	if _, err := s.UpdateUser(ctx, updated); !errors.Is(err, core.ErrUsernameTaken) {
		t.Fatalf("rename onto existing: got %v", err)
	}
	if _, err := s.UpdateUser(ctx, models.User{ID: 424242, Username: "ghost", Password: "h", Role: models.RoleStaff}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("update unknown: got %v", err)
	}
	if err := s.DeleteUser(ctx, 424242); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("delete unknown: got %v", err)
	}
}

func testTasks(t *testing.T, s core.Store) {
	ctx := context.Background()
	alice := mustUser(t, s, "alice", models.RoleStaff)
	bob := mustUser(t, s, "bob", models.RoleStaff)

	june1 := day(2024, 6, 1)
	may31 := day(2024, 5, 31)

	a1 := mustTask(t, s, alice.ID, may31.From, "Brief")
	a2 := mustTask(t, s, alice.ID, june1.From, "Write copy")
	a3 := mustTask(t, s, alice.ID, june1.From, "Proofread")
	b1 := mustTask(t, s, bob.ID, june1.From, "Banner")

	if _, err := s.CreateTask(ctx, models.Task{Date: june1.From, TaskName: "orphan", UserID: 424242}); err == nil {
		t.Fatal("task for unknown user accepted")
	}

	got, err := s.GetTask(ctx, a2.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.TaskName != "Write copy" || got.UserID != alice.ID || got.Plan != "" || !got.Date.Equal(june1.From) {
		t.Fatalf("GetTask = %+v", got)
	}

	list := func(f core.TaskFilter) []int64 {
		t.Helper()
		tasks, err := s.ListTasks(ctx, f)
		if err != nil {
			t.Fatal(err)
		}
		ids := make([]int64, 0, len(tasks))
		for _, task := range tasks {
			ids = append(ids, task.ID)
		}
		return ids
	}
	assertIDs(t, "all tasks", list(core.TaskFilter{}), a2.ID, a3.ID, b1.ID, a1.ID)
	assertIDs(t, "alice's tasks", list(core.TaskFilter{UserID: &alice.ID}), a2.ID, a3.ID, a1.ID)
	assertIDs(t, "june 1st", list(core.TaskFilter{Day: &june1}), a2.ID, a3.ID, b1.ID)
	assertIDs(t, "alice on may 31st", list(core.TaskFilter{UserID: &alice.ID, Day: &may31}), a1.ID)

	// the end of the range is exclusive
	june2 := day(2024, 6, 2)
	mustTask(t, s, alice.ID, june2.From, "Next day")
	if n, err := s.CountTasks(ctx, alice.ID, june1); err != nil || n != 2 {
		t.Fatalf("CountTasks(june 1st) = %d, %v", n, err)
	}
	if n, err := s.CountTasks(ctx, bob.ID, may31); err != nil || n != 0 {
		t.Fatalf("CountTasks(bob, may 31st) = %d, %v", n, err)
	}

	got.Result = "done"
	got.Date = june2.From
	updated, err := s.UpdateTask(ctx, got)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Result != "done" || !updated.Date.Equal(june2.From) || updated.TaskName != "Write copy" {
		t.Fatalf("UpdateTask = %+v", updated)
	}
	if _, err := s.UpdateTask(ctx, models.Task{ID: 424242, TaskName: "x", Date: june1.From}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("update unknown task: got %v", err)
	}

	if err := s.DeleteTask(ctx, b1.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteTask(ctx, b1.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete: got %v", err)
	}
	if _, err := s.GetTask(ctx, b1.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("deleted task: got %v", err)
	}
}

func testReports(t *testing.T, s core.Store) {
	ctx := context.Background()
	alice := mustUser(t, s, "alice", models.RoleStaff)
	bob := mustUser(t, s, "bob", models.RoleStaff)

	june1 := day(2024, 6, 1)
	may31 := day(2024, 5, 31)
	noon := func(d core.DayRange) time.Time { return d.From.Add(12 * time.Hour) }
	at := func(h int) *time.Time {
		v := time.Date(2024, 6, 1, h, 0, 0, 0, time.UTC)
		return &v
	}

	if _, err := s.FindReport(ctx, alice.ID, june1); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("FindReport on empty store: got %v", err)
	}

	create := func(u models.User, d core.DayRange, submittedAt *time.Time) models.DailyReport {
		t.Helper()
		r, err := s.CreateReport(ctx, models.DailyReport{Date: noon(d), UserID: u.ID, Submitted: true, SubmittedAt: submittedAt, CreatedAt: created})
		if err != nil {
			t.Fatalf("create report: %v", err)
		}
		return r
	}
	r1 := create(alice, june1, at(10))
	r2 := create(bob, june1, at(11))
	r3 := create(alice, may31, at(12))

	if _, err := s.CreateReport(ctx, models.DailyReport{Date: noon(june1), UserID: alice.ID, Submitted: true, SubmittedAt: at(13), CreatedAt: created}); !errors.Is(err, core.ErrReportConflict) {
		t.Fatalf("second report for the same day: got %v", err)
	}

	found, err := s.FindReport(ctx, alice.ID, june1)
	if err != nil {
		t.Fatal(err)
	}
	if found.ID != r1.ID || !found.Submitted || found.SubmittedAt == nil || !found.SubmittedAt.Equal(*at(10)) {
		t.Fatalf("FindReport = %+v", found)
	}

	marked, err := s.MarkReportSubmitted(ctx, r1.ID, *at(14))
	if err != nil {
		t.Fatal(err)
	}
	if marked.ID != r1.ID || !marked.SubmittedAt.Equal(*at(14)) || !marked.Date.Equal(noon(june1)) {
		t.Fatalf("MarkReportSubmitted = %+v", marked)
	}
	if _, err := s.MarkReportSubmitted(ctx, 424242, *at(14)); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("mark unknown report: got %v", err)
	}

	bySubmission, err := s.ListReports(ctx, core.ReportFilter{})
	if err != nil {
		t.Fatal(err)
	}
	assertReportIDs(t, "by submittedAt", bySubmission, r1.ID, r3.ID, r2.ID)
	for _, e := range bySubmission {
		if e.User == nil || e.User.ID != e.UserID {
			t.Fatalf("entry %d lacks its author: %+v", e.ID, e.User)
		}
	}
	if bySubmission[2].User.Username != "bob" {
		t.Fatalf("entry author = %q, want bob", bySubmission[2].User.Username)
	}

	byDate, err := s.ListReports(ctx, core.ReportFilter{UserID: &alice.ID, Order: core.OrderByDate})
	if err != nil {
		t.Fatal(err)
	}
	assertReportIDs(t, "alice by date", byDate, r1.ID, r3.ID)

	onDay, err := s.ListReports(ctx, core.ReportFilter{Day: &june1})
	if err != nil {
		t.Fatal(err)
	}
	assertReportIDs(t, "june 1st", onDay, r1.ID, r2.ID)

	if err := s.DeleteReport(ctx, r1.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteReport(ctx, r1.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete: got %v", err)
	}
	if _, err := s.FindReport(ctx, alice.ID, june1); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("deleted report still found: %v", err)
	}

	empty, err := s.ListReports(ctx, core.ReportFilter{UserID: &alice.ID, Day: &june1})
	if err != nil {
		t.Fatal(err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("empty listing = %#v", empty)
	}
}

func testCascade(t *testing.T, s core.Store) {
	ctx := context.Background()
	alice := mustUser(t, s, "alice", models.RoleStaff)
	bob := mustUser(t, s, "bob", models.RoleStaff)
	june1 := day(2024, 6, 1)

	mustTask(t, s, alice.ID, june1.From, "Write copy")
	kept := mustTask(t, s, bob.ID, june1.From, "Banner")
	if _, err := s.CreateReport(ctx, models.DailyReport{Date: june1.From.Add(12 * time.Hour), UserID: alice.ID, Submitted: true, CreatedAt: created}); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteUser(ctx, alice.ID); err != nil {
		t.Fatal(err)
	}
	if n, err := s.CountTasks(ctx, alice.ID, june1); err != nil || n != 0 {
		t.Fatalf("alice's tasks survived: %d, %v", n, err)
	}
	if _, err := s.FindReport(ctx, alice.ID, june1); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("alice's report survived: %v", err)
	}
	if _, err := s.GetTask(ctx, kept.ID); err != nil {
		t.Fatalf("bob's task went with alice: %v", err)
	}
}

func assertIDs(t *testing.T, what string, got []int64, want ...int64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %v, want %v", what, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("%s: got %v, want %v", what, got, want)
		}
	}
}

func assertReportIDs(t *testing.T, what string, entries []models.ReportEntry, want ...int64) {
	t.Helper()
	got := make([]int64, 0, len(entries))
	for _, e := range entries {
		got = append(got, e.ID)
	}
	assertIDs(t, what, got, want...)
}
