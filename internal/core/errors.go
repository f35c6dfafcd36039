package core

import (
	"errors"

	"task_portal/internal/auth"
)

// Access errors come from the authorization policy.
var (
	ErrUnauthenticated = auth.ErrUnauthenticated
	ErrUnauthorized    = auth.ErrUnauthorized
)

var (
	ErrInvalidArgs        = errors.New("invalid arguments")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
)

// Report submission errors
var (
	ErrDeadlinePassed  = errors.New("submission deadline has passed")
	ErrNoTasksToSubmit = errors.New("no tasks to submit for this date")
	ErrReportConflict  = errors.New("report was submitted concurrently, retry")
)
