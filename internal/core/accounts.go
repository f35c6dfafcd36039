package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"task_portal/internal/auth"
	"task_portal/internal/models"
)

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// Login checks a username/password pair. Unknown users and wrong
// passwords fail the same way.
func (s *Service) Login(ctx context.Context, username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: username and password are required", ErrInvalidArgs)
	}

	u, err := s.db.GetUserByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		// spend the same bcrypt time as a real comparison
		dummyHashOnce.Do(func() { dummyHash, _ = auth.HashPassword("not-a-real-password") })
		auth.CheckPassword(dummyHash, password)
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}

	if !auth.CheckPassword(u.Password, password) {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// CurrentUser resolves the session to its stored user. A session whose
// user has since been deleted counts as no session.
func (s *Service) CurrentUser(ctx context.Context, sess *auth.Session) (models.User, error) {
	if sess == nil {
		return models.User{}, ErrUnauthenticated
	}
	u, err := s.db.GetUser(ctx, sess.UserID)
	if errors.Is(err, ErrNotFound) {
		return models.User{}, ErrUnauthenticated
	}
	return u, err
}
