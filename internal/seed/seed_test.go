package seed_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"task_portal/internal/clock"
	"task_portal/internal/core"
	"task_portal/internal/core/coretest"
	"task_portal/internal/models"
	"task_portal/internal/seed"
)

const doc = `
users:
  - username: root
    password: root-pw
    role: admin
  - username: alice
    password: alice-pw
    position: graphic_design
`

func newService() (*core.Service, *coretest.MemoryStore) {
	store := coretest.NewMemoryStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.Fake(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	return core.NewService(store, clk, time.UTC, log), store
}

func TestLoadAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	f, err := seed.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Users) != 2 || f.Users[1].Position != "graphic_design" {
		t.Fatalf("parsed %+v", f)
	}

	svc, store := newService()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	n, err := seed.Apply(ctx, log, svc, f)
	if err != nil || n != 2 {
		t.Fatalf("Apply = %d, %v; want 2 created", n, err)
	}

	root, err := svc.Login(ctx, "root", "root-pw")
	if err != nil || root.Role != models.RoleAdmin {
		t.Fatalf("root login = %+v, %v", root, err)
	}
	alice, err := svc.Login(ctx, "alice", "alice-pw")
	if err != nil || alice.Role != models.RoleStaff || alice.Position == nil || *alice.Position != models.PositionGraphicDesign {
		t.Fatalf("alice login = %+v, %v", alice, err)
	}

	// a second run finds everyone in place
	n, err = seed.Apply(ctx, log, svc, f)
	if err != nil || n != 0 {
		t.Fatalf("second Apply = %d, %v; want 0", n, err)
	}
	if users, _, _ := store.Count(); users != 2 {
		t.Fatalf("users = %d, want 2", users)
	}
}

func TestApplyRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name string
		user seed.User
	}{
		{"unknown role", seed.User{Username: "x", Password: "x", Role: "owner"}},
		{"unknown position", seed.User{Username: "x", Password: "x", Position: "ceo"}},
		{"no password", seed.User{Username: "x"}},
		{"password over 72 bytes", seed.User{Username: "x", Password: strings.Repeat("é", 40)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService()
			log := slog.New(slog.NewTextHandler(io.Discard, nil))
			_, err := seed.Apply(context.Background(), log, svc, seed.File{Users: []seed.User{tt.user}})
			if !errors.Is(err, core.ErrInvalidArgs) {
				t.Fatalf("err = %v, want ErrInvalidArgs", err)
			}
		})
	}
}

func TestParse(t *testing.T) {
	if _, err := seed.Parse([]byte("users:\n  - username: a\n    pasword: typo\n")); err == nil {
		t.Fatal("unknown field accepted")
	}
	f, err := seed.Parse(nil)
	if err != nil || len(f.Users) != 0 {
		t.Fatalf("empty document = %+v, %v", f, err)
	}
	if _, err := seed.Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file err = %v", err)
	}
}
