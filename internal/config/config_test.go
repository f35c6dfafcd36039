package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var secret = strings.Repeat("s", MinSecretLength)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
env: development
log_level: DEBUG
http_server:
  address: ":9000"
db:
  driver: sqlite
  dsn: portal.db
session:
  secret: "`+secret+`"
timezone: UTC
jobs:
  missing_reports: "30 8 * * 1-5"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Development() || cfg.LogLevel != "DEBUG" {
		t.Fatalf("env/log level: %+v", cfg)
	}
	if cfg.HTTP.Address != ":9000" || cfg.HTTP.Timeout != 5*time.Second || cfg.HTTP.ShutdownTimeout != 10*time.Second {
		t.Fatalf("http: %+v", cfg.HTTP)
	}
	if cfg.DB.Driver != "sqlite" || cfg.DB.DSN != "portal.db" {
		t.Fatalf("db: %+v", cfg.DB)
	}
	if cfg.Session.CookieName != "session" {
		t.Fatalf("cookie name default: %q", cfg.Session.CookieName)
	}
	if !cfg.MissingReportsEnabled() || cfg.Jobs.MissingReports != "30 8 * * 1-5" {
		t.Fatalf("jobs: %+v", cfg.Jobs)
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Fatalf("Location() = %v, %v", loc, err)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("SESSION_SECRET", secret)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "file.db")
	t.Setenv("JOBS_MISSING_REPORTS", "off")

	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.yaml")} {
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%q): %v", path, err)
		}
		if cfg.Session.Secret != secret || cfg.DB.DSN != "file.db" {
			t.Fatalf("Load(%q) = %+v", path, cfg)
		}
		if cfg.Development() {
			t.Fatal("development should be opt-in")
		}
		if cfg.MissingReportsEnabled() {
			t.Fatal("missing reports job should be off")
		}
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
session:
  secret: "`+secret+`"
db:
  driver: sqlite
  dsn: from-file.db
`)
	t.Setenv("DB_DSN", "from-env.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DB.DSN != "from-env.db" {
		t.Fatalf("dsn = %q, want the environment value", cfg.DB.DSN)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"short secret", map[string]string{"SESSION_SECRET": "short"}, "session secret"},
		{"unknown driver", map[string]string{"DB_DRIVER": "mongo"}, "db driver"},
		{"unknown timezone", map[string]string{"PORTAL_TIMEZONE": "Mars/Olympus_Mons"}, "timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_SECRET", secret)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("got %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}

// chdir is a Go 1.21 stand-in for testing.T.Chdir.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "SESSION_SECRET="+secret+"\nPORTAL_TIMEZONE=UTC\n")
	chdir(t, dir)

	// godotenv never overrides variables that are already set; t.Setenv
	// restores both afterwards.
	for _, k := range []string{"SESSION_SECRET", "PORTAL_TIMEZONE"} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Session.Secret != secret {
		t.Fatalf("secret from .env = %q", cfg.Session.Secret)
	}
}
