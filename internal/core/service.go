package core

import (
	"context"
	"log/slog"
	"time"

	"task_portal/internal/clock"
)

type Service struct {
	db    Store
	clock clock.Clock
	loc   *time.Location
	log   *slog.Logger
}

func NewService(db Store, clk clock.Clock, loc *time.Location, log *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		db:    db,
		clock: clk,
		loc:   loc,
		log:   log,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Service) Location() *time.Location {
	return s.loc
}
