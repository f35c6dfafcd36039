package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"task_portal/internal/core"
)

func TestCreateTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"", "   "} {
		if _, err := f.svc.CreateTask(ctx, f.alice, core.NewTask{TaskName: name}); !errors.Is(err, core.ErrInvalidArgs) {
			t.Errorf("CreateTask(%q): got %v, want ErrInvalidArgs", name, err)
		}
	}
	if _, err := f.svc.CreateTask(ctx, nil, core.NewTask{TaskName: "x"}); !errors.Is(err, core.ErrUnauthenticated) {
		t.Errorf("anonymous create: got %v", err)
	}

	task, err := f.svc.CreateTask(ctx, f.alice, core.NewTask{TaskName: "  Write copy ", Plan: "5"})
	if err != nil {
		t.Fatal(err)
	}
	if task.TaskName != "Write copy" || task.Plan != "5" || task.Result != "" {
		t.Fatalf("unexpected task: %+v", task)
	}
	if task.UserID != f.alice.UserID {
		t.Fatalf("owner = %d, want %d", task.UserID, f.alice.UserID)
	}
	if want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC); !task.Date.Equal(want) {
		t.Fatalf("default date = %v, want %v", task.Date, want)
	}
}

func TestCreateTaskAfterUserDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.DeleteStaff(ctx, f.admin, f.bob.UserID); err != nil {
		t.Fatal(err)
	}
	// bob's session is still validly signed
	if _, err := f.svc.CreateTask(ctx, f.bob, core.NewTask{TaskName: "Banner"}); !errors.Is(err, core.ErrUnauthenticated) {
		t.Fatalf("got %v, want ErrUnauthenticated", err)
	}
	if _, tasks, _ := f.store.Count(); tasks != 0 {
		t.Fatalf("tasks = %d, want 0", tasks)
	}
}

func TestListTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a1 := f.task(t, f.alice, "2024-05-31", "Brief")
	a2 := f.task(t, f.alice, "2024-06-01", "Write copy")
	a3 := f.task(t, f.alice, "2024-06-01", "Proofread")
	b1 := f.task(t, f.bob, "2024-06-01", "Banner")

	ids := func(t *testing.T, q core.TaskQuery, sess string) []int64 {
		t.Helper()
		s := f.admin
		if sess == "alice" {
			s = f.alice
		}
		tasks, err := f.svc.ListTasks(ctx, s, q)
		if err != nil {
			t.Fatalf("ListTasks: %v", err)
		}
		out := make([]int64, 0, len(tasks))
		for _, task := range tasks {
			out = append(out, task.ID)
		}
		return out
	}

	day := f.date(t, "2024-06-01")
	tests := []struct {
		name string
		sess string
		q    core.TaskQuery
		want []int64
	}{
		{"staff sees own", "alice", core.TaskQuery{}, []int64{a2.ID, a3.ID, a1.ID}},
		{"staff own by id", "alice", core.TaskQuery{UserID: ptr(f.alice.UserID)}, []int64{a2.ID, a3.ID, a1.ID}},
		{"staff by day", "alice", core.TaskQuery{Date: &day}, []int64{a2.ID, a3.ID}},
		{"admin sees all", "admin", core.TaskQuery{}, []int64{a2.ID, a3.ID, b1.ID, a1.ID}},
		{"admin by user", "admin", core.TaskQuery{UserID: ptr(f.bob.UserID)}, []int64{b1.ID}},
		{"admin by user and day", "admin", core.TaskQuery{UserID: ptr(f.alice.UserID), Date: &day}, []int64{a2.ID, a3.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(t, tt.q, tt.sess)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}

	if _, err := f.svc.ListTasks(ctx, f.alice, core.TaskQuery{UserID: ptr(f.bob.UserID)}); !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("staff listing another user: got %v", err)
	}
	if _, err := f.svc.ListTasks(ctx, nil, core.TaskQuery{}); !errors.Is(err, core.ErrUnauthenticated) {
		t.Fatalf("anonymous listing: got %v", err)
	}
}

func TestUpdateTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.task(t, f.alice, "2024-06-01", "Write copy")

	updated, err := f.svc.UpdateTask(ctx, f.alice, task.ID, core.TaskPatch{Result: ptr("done")})
	if err != nil {
		t.Fatal(err)
	}
	if updated.TaskName != "Write copy" || updated.Result != "done" || !updated.Date.Equal(task.Date) {
		t.Fatalf("partial update changed other fields: %+v", updated)
	}

	next := f.date(t, "2024-06-02")
	updated, err = f.svc.UpdateTask(ctx, f.admin, task.ID, core.TaskPatch{TaskName: ptr("Edit copy"), Date: &next})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.TaskName != "Edit copy" || !updated.Date.Equal(next) || updated.UserID != f.alice.UserID {
		t.Fatalf("admin update: %+v", updated)
	}

	if _, err := f.svc.UpdateTask(ctx, f.alice, task.ID, core.TaskPatch{TaskName: ptr(" ")}); !errors.Is(err, core.ErrInvalidArgs) {
		t.Fatalf("blank name: got %v", err)
	}
	if _, err := f.svc.UpdateTask(ctx, f.bob, task.ID, core.TaskPatch{Result: ptr("mine now")}); !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("bob updates alice's task: got %v", err)
	}

	got, err := f.store.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Result != "done" {
		t.Fatalf("rejected updates leaked: %+v", got)
	}
}

func TestTaskCheckOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.task(t, f.alice, "2024-06-01", "Write copy")

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"anonymous on missing", func() error {
			_, err := f.svc.UpdateTask(ctx, nil, 9999, core.TaskPatch{})
			return err
		}, core.ErrUnauthenticated},
		{"other staff on missing", func() error {
			_, err := f.svc.UpdateTask(ctx, f.bob, 9999, core.TaskPatch{})
			return err
		}, core.ErrNotFound},
		{"zero id", func() error { return f.svc.DeleteTask(ctx, f.alice, 0) }, core.ErrNotFound},
		{"other staff deletes", func() error { return f.svc.DeleteTask(ctx, f.bob, task.ID) }, core.ErrUnauthorized},
		{"anonymous deletes", func() error { return f.svc.DeleteTask(ctx, nil, task.ID) }, core.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}

	if _, tasks, _ := f.store.Count(); tasks != 1 {
		t.Fatalf("rejected deletes removed rows: %d left", tasks)
	}
}

func TestDeleteTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.task(t, f.alice, "2024-06-01", "Write copy")
	theirs := f.task(t, f.bob, "2024-06-01", "Banner")

	if err := f.svc.DeleteTask(ctx, f.alice, mine.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.DeleteTask(ctx, f.alice, mine.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete: got %v", err)
	}
	if err := f.svc.DeleteTask(ctx, f.admin, theirs.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, tasks, _ := f.store.Count(); tasks != 0 {
		t.Fatalf("%d tasks left", tasks)
	}
}
