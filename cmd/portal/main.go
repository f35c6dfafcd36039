package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/spf13/pflag"

	"task_portal/internal/auth"
	"task_portal/internal/clock"
	"task_portal/internal/config"
	"task_portal/internal/core"
	"task_portal/internal/jobs"
	"task_portal/internal/seed"
	"task_portal/internal/session"
	"task_portal/internal/storage/postgres"
	"task_portal/internal/storage/sqlite"
	"task_portal/internal/web"
)

// store is what main needs from a storage adapter beyond core.Store.
type store interface {
	core.Store
	Migrate() error
	Close() error
}

func main() {
	var configPath, seedPath string
	pflag.StringVarP(&configPath, "config", "c", "config.yaml", "server configuration file")
	pflag.StringVar(&seedPath, "seed", "", "YAML file of users to create on startup")
	pflag.Parse()

	cfg := config.MustLoad(configPath)
	log := mustMakeLogger(cfg.LogLevel)

	if err := run(cfg, seedPath, log); err != nil {
		log.Error("portal stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, seedPath string, log *slog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := openStore(cfg.DB, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.Migrate(); err != nil {
		return err
	}

	clk := clock.Real()
	svc := core.NewService(db, clk, loc, log)

	if seedPath == "" {
		seedPath = cfg.SeedFile
	}
	if seedPath != "" {
		f, err := seed.Load(seedPath)
		if err != nil {
			return err
		}
		n, err := seed.Apply(context.Background(), log, svc, f)
		if err != nil {
			return err
		}
		log.Info("seed applied", "file", seedPath, "created", n)
	}

	tokens := auth.NewTokenCodec([]byte(cfg.Session.Secret), clk)
	sessions := session.NewManager(tokens, clk, session.Options{
		CookieName: cfg.Session.CookieName,
		Secure:     !cfg.Development(),
	})

	server := http.Server{
		Addr:              cfg.HTTP.Address,
		ReadHeaderTimeout: cfg.HTTP.Timeout,
		Handler:           web.NewServer(log, svc, sessions, cfg.HTTP.Timeout).Handler(),
	}

	var sweep *jobs.MissingReports
	if cfg.MissingReportsEnabled() {
		sweep, err = jobs.NewMissingReports(log, svc, cfg.Jobs.MissingReports, loc)
		if err != nil {
			return err
		}
		sweep.Start()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("portal http server", "address", server.Addr, "db", cfg.DB.Driver, "timezone", loc.String())
		errCh <- server.ListenAndServe()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if sweep != nil {
		sweep.Stop(shutdownCtx)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	return serveErr
}

func openStore(cfg config.DBConfig, log *slog.Logger) (store, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.New(log, cfg.DSN)
	case "sqlite":
		return sqlite.New(log, cfg.DSN)
	}
	return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
}

func mustMakeLogger(logLevel string) *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
