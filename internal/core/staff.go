package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"task_portal/internal/auth"
	"task_portal/internal/models"
)

type NewUser struct {
	Username string
	Password string
	Role     models.Role
	Position *models.Position
}

// StaffPatch changes only the non-nil fields. An empty Position clears it.
type StaffPatch struct {
	Username *string
	Password *string
	Position *string
}

func (s *Service) ListStaff(ctx context.Context, sess *auth.Session) ([]models.User, error) {
	if err := auth.Authorize(sess, auth.ManageStaff, auth.Resource{}); err != nil {
		return nil, err
	}
	return s.db.ListUsers(ctx, models.RoleStaff)
}

func (s *Service) CreateStaff(ctx context.Context, sess *auth.Session, in NewUser) (models.User, error) {
	if err := auth.Authorize(sess, auth.ManageStaff, auth.Resource{}); err != nil {
		return models.User{}, err
	}
	in.Role = models.RoleStaff
	u, err := s.createUser(ctx, in)
	if err != nil {
		return models.User{}, err
	}
	s.log.Info("staff account created", "user_id", u.ID, "username", u.Username, "by", sess.UserID)
	return u, nil
}

// SeedUser creates a user outside any session, for bootstrapping.
// It reports false when the username already exists.
func (s *Service) SeedUser(ctx context.Context, in NewUser) (bool, error) {
	if !in.Role.Valid() {
		return false, fmt.Errorf("%w: role must be admin or staff", ErrInvalidArgs)
	}
	if _, err := s.createUser(ctx, in); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) createUser(ctx context.Context, in NewUser) (models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return models.User{}, fmt.Errorf("%w: username and password are required", ErrInvalidArgs)
	}
	if err := checkPasswordLength(in.Password); err != nil {
		return models.User{}, err
	}
	if in.Position != nil && !in.Position.Valid() {
		return models.User{}, fmt.Errorf("%w: unknown position %q", ErrInvalidArgs, *in.Position)
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	return s.db.CreateUser(ctx, models.User{
		Username:  username,
		Password:  hashed,
		Role:      in.Role,
		Position:  in.Position,
		CreatedAt: s.clock.Now(),
	})
}

func (s *Service) UpdateStaff(ctx context.Context, sess *auth.Session, id int64, p StaffPatch) (models.User, error) {
	if err := auth.Authorize(sess, auth.ManageStaff, auth.Resource{}); err != nil {
		return models.User{}, err
	}

	u, err := s.getStaff(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	if p.Username != nil {
		name := strings.TrimSpace(*p.Username)
		if name == "" {
			return models.User{}, fmt.Errorf("%w: username must not be empty", ErrInvalidArgs)
		}
		u.Username = name
	}

	if p.Password != nil {
		if *p.Password == "" {
			return models.User{}, fmt.Errorf("%w: password must not be empty", ErrInvalidArgs)
		}
		if err := checkPasswordLength(*p.Password); err != nil {
			return models.User{}, err
		}
		hashed, err := auth.HashPassword(*p.Password)
		if err != nil {
			return models.User{}, fmt.Errorf("hash password: %w", err)
		}
		u.Password = hashed
	}

	if p.Position != nil {
		if *p.Position == "" {
			u.Position = nil
		} else {
			pos := models.Position(*p.Position)
			if !pos.Valid() {
				return models.User{}, fmt.Errorf("%w: unknown position %q", ErrInvalidArgs, *p.Position)
			}
			u.Position = &pos
		}
	}

	return s.db.UpdateUser(ctx, u)
}

func (s *Service) DeleteStaff(ctx context.Context, sess *auth.Session, id int64) error {
	if err := auth.Authorize(sess, auth.ManageStaff, auth.Resource{}); err != nil {
		return err
	}
	if _, err := s.getStaff(ctx, id); err != nil {
		return err
	}
	if err := s.db.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.log.Info("staff account deleted", "user_id", id, "by", sess.UserID)
	return nil
}

// getStaff loads a staff account. Admin accounts are not managed
// through the staff endpoints and read as missing.
func (s *Service) getStaff(ctx context.Context, id int64) (models.User, error) {
	if id <= 0 {
		return models.User{}, ErrNotFound
	}
	u, err := s.db.GetUser(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if u.Role != models.RoleStaff {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func checkPasswordLength(password string) error {
	if len(password) > auth.MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidArgs, auth.MaxPasswordBytes)
	}
	return nil
}
