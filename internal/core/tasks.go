package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"task_portal/internal/auth"
	"task_portal/internal/models"
)

type TaskQuery struct {
	Date   *time.Time
	UserID *int64
}

type NewTask struct {
	// Date defaults to today.
	Date     *time.Time
	TaskName string
	Plan     string
	Result   string
}

type TaskPatch struct {
	Date     *time.Time
	TaskName *string
	Plan     *string
	Result   *string
}

// ListTasks returns tasks visible to the session. Staff only ever see
// their own; admins see everyone's unless UserID narrows it.
func (s *Service) ListTasks(ctx context.Context, sess *auth.Session, q TaskQuery) ([]models.Task, error) {
	var owner int64
	if q.UserID != nil {
		owner = *q.UserID
	}
	if err := auth.Authorize(sess, auth.ReadTasks, auth.Resource{OwnerID: owner}); err != nil {
		return nil, err
	}

	f := TaskFilter{UserID: q.UserID}
	if f.UserID == nil && !auth.Can(sess, auth.ReadAllTasks, auth.Resource{}) {
		uid := sess.UserID
		f.UserID = &uid
	}
	if q.Date != nil {
		day := s.dayOf(*q.Date)
		f.Day = &day
	}

	return s.db.ListTasks(ctx, f)
}

func (s *Service) CreateTask(ctx context.Context, sess *auth.Session, in NewTask) (models.Task, error) {
	if err := auth.Authorize(sess, auth.WriteTask, auth.Resource{}); err != nil {
		return models.Task{}, err
	}

	name := strings.TrimSpace(in.TaskName)
	if name == "" {
		return models.Task{}, fmt.Errorf("%w: taskName is required", ErrInvalidArgs)
	}

	day := s.today()
	if in.Date != nil {
		day = s.dayOf(*in.Date)
	}

	t, err := s.db.CreateTask(ctx, models.Task{
		Date:     day.From,
		TaskName: name,
		Plan:     in.Plan,
		Result:   in.Result,
		UserID:   sess.UserID,
	})
	if errors.Is(err, ErrNotFound) {
		// the session outlived its user
		return models.Task{}, ErrUnauthenticated
	}
	return t, err
}

func (s *Service) UpdateTask(ctx context.Context, sess *auth.Session, id int64, p TaskPatch) (models.Task, error) {
	t, err := s.ownedTask(ctx, sess, id)
	if err != nil {
		return models.Task{}, err
	}

	if p.TaskName != nil {
		name := strings.TrimSpace(*p.TaskName)
		if name == "" {
			return models.Task{}, fmt.Errorf("%w: taskName must not be empty", ErrInvalidArgs)
		}
		t.TaskName = name
	}
	if p.Plan != nil {
		t.Plan = *p.Plan
	}
	if p.Result != nil {
		t.Result = *p.Result
	}
	if p.Date != nil {
		t.Date = s.dayOf(*p.Date).From
	}

	return s.db.UpdateTask(ctx, t)
}

func (s *Service) DeleteTask(ctx context.Context, sess *auth.Session, id int64) error {
	if _, err := s.ownedTask(ctx, sess, id); err != nil {
		return err
	}
	return s.db.DeleteTask(ctx, id)
}

// ownedTask loads a task the session may change. The order of checks
// is session, existence, ownership.
func (s *Service) ownedTask(ctx context.Context, sess *auth.Session, id int64) (models.Task, error) {
	if err := auth.Authorize(sess, auth.WriteTask, auth.Resource{}); err != nil {
		return models.Task{}, err
	}
	if id <= 0 {
		return models.Task{}, ErrNotFound
	}

	t, err := s.db.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}

	if err := auth.Authorize(sess, auth.WriteTask, auth.Resource{OwnerID: t.UserID}); err != nil {
		return models.Task{}, err
	}
	return t, nil
}
