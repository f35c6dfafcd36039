package postgres

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"task_portal/internal/core"
	"task_portal/internal/storage/storetest"
)

// The tests need a scratch database; every table in it is truncated.
const dsnEnv = "PORTAL_TEST_POSTGRES_DSN"

func openScratch(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s not set", dsnEnv)
	}

	db, err := New(slog.New(slog.NewTextHandler(io.Discard, nil)), dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := db.conn.Exec(`TRUNCATE daily_reports, tasks, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) core.Store { return openScratch(t) })
}
