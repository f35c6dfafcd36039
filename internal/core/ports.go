package core

import (
	"context"
	"time"

	"task_portal/internal/models"
)

// Store is the persistence port. Implementations report a missing row
// as ErrNotFound, a duplicate username as ErrUsernameTaken and a second
// report for the same (date, user) as ErrReportConflict.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, u models.User) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	// ListUsers returns users with the given role, or everyone for "".
	ListUsers(ctx context.Context, role models.Role) ([]models.User, error)
	UpdateUser(ctx context.Context, u models.User) (models.User, error)
	// DeleteUser removes the user together with its tasks and reports.
	DeleteUser(ctx context.Context, id int64) error

	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	GetTask(ctx context.Context, id int64) (models.Task, error)
	ListTasks(ctx context.Context, f TaskFilter) ([]models.Task, error)
	CountTasks(ctx context.Context, userID int64, day DayRange) (int, error)
	UpdateTask(ctx context.Context, t models.Task) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) error

	FindReport(ctx context.Context, userID int64, day DayRange) (models.DailyReport, error)
	CreateReport(ctx context.Context, r models.DailyReport) (models.DailyReport, error)
	MarkReportSubmitted(ctx context.Context, id int64, at time.Time) (models.DailyReport, error)
	DeleteReport(ctx context.Context, id int64) error
	// ListReports returns matching reports with User filled in.
	ListReports(ctx context.Context, f ReportFilter) ([]models.ReportEntry, error)
}
