package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"task_portal/internal/core"
	"task_portal/internal/models"
)

type DB struct {
	log  *slog.Logger
	conn *sqlx.DB
}

var _ core.Store = (*DB)(nil)

func New(log *slog.Logger, dsn string) (*DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		log.Error("connection problem", "error", err)
		return nil, err
	}
	return &DB{log: log, conn: db}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Users

const userColumns = `id, username, password, role, position, created_at`

func (db *DB) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	const q = `
		INSERT INTO users(username, password, role, position, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
	`

	if err := db.conn.QueryRowxContext(ctx, q, u.Username, u.Password, u.Role, u.Position, u.CreatedAt).Scan(&u.ID); err != nil {
		if isUniqueViolation(err) {
			return models.User{}, core.ErrUsernameTaken
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (db *DB) GetUser(ctx context.Context, id int64) (models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u models.User
	if err := db.conn.GetContext(ctx, &u, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, core.ErrNotFound
		}
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	var u models.User
	if err := db.conn.GetContext(ctx, &u, q, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, core.ErrNotFound
		}
		return models.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

func (db *DB) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users`
	var args []any
	if role != "" {
		q += ` WHERE role = $1`
		args = append(args, role)
	}
	q += ` ORDER BY username ASC`

	out := []models.User{}
	if err := db.conn.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (db *DB) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	const q = `
		UPDATE users
		SET username = $2,
		    password = $3,
		    position = $4
		WHERE id = $1
		RETURNING ` + userColumns + `;
	`

	var out models.User
	if err := db.conn.GetContext(ctx, &out, q, u.ID, u.Username, u.Password, u.Position); err != nil {
		if isUniqueViolation(err) {
			return models.User{}, core.ErrUsernameTaken
		}
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, core.ErrNotFound
		}
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return out, nil
}

// DeleteUser relies on ON DELETE CASCADE for the user's tasks and reports.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	const q = `DELETE FROM users WHERE id = $1`

	res, err := db.conn.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Tasks

const taskColumns = `id, date, task_name, plan, result, user_id`

func (db *DB) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	const q = `
		INSERT INTO tasks(date, task_name, plan, result, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
	`

	if err := db.conn.QueryRowxContext(ctx, q, t.Date, t.TaskName, t.Plan, t.Result, t.UserID).Scan(&t.ID); err != nil {
		if isForeignKeyViolation(err) {
			return models.Task{}, core.ErrNotFound
		}
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

func (db *DB) GetTask(ctx context.Context, id int64) (models.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	var t models.Task
	if err := db.conn.GetContext(ctx, &t, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, core.ErrNotFound
		}
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (db *DB) ListTasks(ctx context.Context, f core.TaskFilter) ([]models.Task, error) {
	var (
		sb   strings.Builder
		args []any
		n    = 1
	)

	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`)

	if f.UserID != nil {
		args = append(args, *f.UserID)
		sb.WriteString(fmt.Sprintf(" AND user_id = $%d", n))
		n++
	}
	if f.Day != nil {
		args = append(args, f.Day.From, f.Day.To)
		sb.WriteString(fmt.Sprintf(" AND date >= $%d AND date < $%d", n, n+1))
	}
	sb.WriteString(" ORDER BY date DESC, id ASC")

	out := []models.Task{}
	if err := db.conn.SelectContext(ctx, &out, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

func (db *DB) CountTasks(ctx context.Context, userID int64, day core.DayRange) (int, error) {
	const q = `SELECT count(*) FROM tasks WHERE user_id = $1 AND date >= $2 AND date < $3`

	var n int
	if err := db.conn.GetContext(ctx, &n, q, userID, day.From, day.To); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (db *DB) UpdateTask(ctx context.Context, t models.Task) (models.Task, error) {
	const q = `
		UPDATE tasks
		SET date = $2,
		    task_name = $3,
		    plan = $4,
		    result = $5
		WHERE id = $1
		RETURNING ` + taskColumns + `;
	`

	var out models.Task
	if err := db.conn.GetContext(ctx, &out, q, t.ID, t.Date, t.TaskName, t.Plan, t.Result); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, core.ErrNotFound
		}
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	return out, nil
}

func (db *DB) DeleteTask(ctx context.Context, id int64) error {
	const q = `DELETE FROM tasks WHERE id = $1`

	res, err := db.conn.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Reports

const reportColumns = `id, date, user_id, submitted, submitted_at, created_at`

func (db *DB) FindReport(ctx context.Context, userID int64, day core.DayRange) (models.DailyReport, error) {
	const q = `
		SELECT ` + reportColumns + `
		FROM daily_reports
		WHERE user_id = $1 AND date >= $2 AND date < $3
		ORDER BY id
		LIMIT 1;
	`

	var r models.DailyReport
	if err := db.conn.GetContext(ctx, &r, q, userID, day.From, day.To); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DailyReport{}, core.ErrNotFound
		}
		return models.DailyReport{}, fmt.Errorf("find report: %w", err)
	}
	return r, nil
}

func (db *DB) CreateReport(ctx context.Context, r models.DailyReport) (models.DailyReport, error) {
	const q = `
		INSERT INTO daily_reports(date, user_id, submitted, submitted_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
	`

	if err := db.conn.QueryRowxContext(ctx, q, r.Date, r.UserID, r.Submitted, r.SubmittedAt, r.CreatedAt).Scan(&r.ID); err != nil {
		if isUniqueViolation(err) {
			return models.DailyReport{}, core.ErrReportConflict
		}
		if isForeignKeyViolation(err) {
			return models.DailyReport{}, core.ErrNotFound
		}
		return models.DailyReport{}, fmt.Errorf("insert report: %w", err)
	}
	return r, nil
}

func (db *DB) MarkReportSubmitted(ctx context.Context, id int64, at time.Time) (models.DailyReport, error) {
	const q = `
		UPDATE daily_reports
		SET submitted = true,
		    submitted_at = $2
		WHERE id = $1
		RETURNING ` + reportColumns + `;
	`

	var r models.DailyReport
	if err := db.conn.GetContext(ctx, &r, q, id, at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DailyReport{}, core.ErrNotFound
		}
		return models.DailyReport{}, fmt.Errorf("mark report submitted: %w", err)
	}
	return r, nil
}

func (db *DB) DeleteReport(ctx context.Context, id int64) error {
	const q = `DELETE FROM daily_reports WHERE id = $1`

	res, err := db.conn.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return core.ErrNotFound
	}
	return nil
}

// reportRow is a daily_reports row joined with its author.
type reportRow struct {
	models.DailyReport
	Username string           `db:"username"`
	Position *models.Position `db:"position"`
}

func (db *DB) ListReports(ctx context.Context, f core.ReportFilter) ([]models.ReportEntry, error) {
	var (
		sb   strings.Builder
		args []any
		n    = 1
	)

	sb.WriteString(`
		SELECT r.id, r.date, r.user_id, r.submitted, r.submitted_at, r.created_at, u.username, u.position
		FROM daily_reports r
		JOIN users u ON u.id = r.user_id
		WHERE 1=1`)

	if f.UserID != nil {
		args = append(args, *f.UserID)
		sb.WriteString(fmt.Sprintf(" AND r.user_id = $%d", n))
		n++
	}
	if f.Day != nil {
		args = append(args, f.Day.From, f.Day.To)
		sb.WriteString(fmt.Sprintf(" AND r.date >= $%d AND r.date < $%d", n, n+1))
	}

	switch f.Order {
	case core.OrderByDate:
		sb.WriteString(" ORDER BY r.date DESC, r.id DESC")
	default:
		sb.WriteString(" ORDER BY r.submitted_at DESC NULLS LAST, r.id DESC")
	}

	var rows []reportRow
	if err := db.conn.SelectContext(ctx, &rows, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	out := make([]models.ReportEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.ReportEntry{
			DailyReport: row.DailyReport,
			User:        &models.UserSummary{ID: row.UserID, Username: row.Username, Position: row.Position},
		})
	}
	return out, nil
}

// pq helpers

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
