// Package sqlite is a single-file store for local runs and tests.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"task_portal/internal/core"
	"task_portal/internal/models"
)

type DB struct {
	log  *slog.Logger
	conn *gorm.DB
}

var _ core.Store = (*DB)(nil)

func New(log *slog.Logger, dsn string) (*DB, error) {
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		log.Error("connection problem", "dsn", dsn, "error", err)
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	// one writer at a time, or SQLite answers "database is locked"
	sqlDB.SetMaxOpenConns(1)

	return &DB{log: log, conn: conn}, nil
}

func (db *DB) Close() error {
	sqlDB, err := db.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	sqlDB, err := db.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (db *DB) Migrate() error {
	db.log.Debug("running portal migrations")
	if err := db.conn.AutoMigrate(&userRow{}, &taskRow{}, &reportRow{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	db.log.Debug("portal migrations finished")
	return nil
}

// Users

func (db *DB) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	row := fromUser(u)
	if err := db.conn.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return models.User{}, core.ErrUsernameTaken
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return row.model(), nil
}

func (db *DB) GetUser(ctx context.Context, id int64) (models.User, error) {
	var row userRow
	if err := db.conn.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, core.ErrNotFound
		}
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return row.model(), nil
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	var row userRow
	if err := db.conn.WithContext(ctx).Where("username = ?", username).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, core.ErrNotFound
		}
		return models.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return row.model(), nil
}

func (db *DB) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	q := db.conn.WithContext(ctx).Order("username ASC")
	if role != "" {
		q = q.Where("role = ?", string(role))
	}

	var rows []userRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]models.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (db *DB) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	row := fromUser(u)
	res := db.conn.WithContext(ctx).Model(&userRow{}).Where("id = ?", u.ID).Updates(map[string]any{
		"username": row.Username,
		"password": row.Password,
		"position": row.Position,
	})
	if err := res.Error; err != nil {
		if isUniqueViolation(err) {
			return models.User{}, core.ErrUsernameTaken
		}
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	if res.RowsAffected == 0 {
		return models.User{}, core.ErrNotFound
	}
	return db.GetUser(ctx, u.ID)
}

// DeleteUser removes the user with its tasks and reports in one transaction.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	return db.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&reportRow{}).Error; err != nil {
			return fmt.Errorf("delete user reports: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&taskRow{}).Error; err != nil {
			return fmt.Errorf("delete user tasks: %w", err)
		}
		res := tx.Delete(&userRow{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return core.ErrNotFound
		}
		return nil
	})
}

// Tasks

func (db *DB) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	row := fromTask(t)
	err := db.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owners int64
		if err := tx.Model(&userRow{}).Where("id = ?", row.UserID).Count(&owners).Error; err != nil {
			return err
		}
		if owners == 0 {
			return core.ErrNotFound
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return models.Task{}, err
		}
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return row.model(), nil
}

func (db *DB) GetTask(ctx context.Context, id int64) (models.Task, error) {
	var row taskRow
	if err := db.conn.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, core.ErrNotFound
		}
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return row.model(), nil
}

func (db *DB) ListTasks(ctx context.Context, f core.TaskFilter) ([]models.Task, error) {
	q := db.conn.WithContext(ctx).Order("date DESC").Order("id ASC")
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Day != nil {
		q = q.Where("date >= ? AND date < ?", f.Day.From.UTC(), f.Day.To.UTC())
	}

	var rows []taskRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	out := make([]models.Task, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (db *DB) CountTasks(ctx context.Context, userID int64, day core.DayRange) (int, error) {
	var n int64
	err := db.conn.WithContext(ctx).Model(&taskRow{}).
		Where("user_id = ? AND date >= ? AND date < ?", userID, day.From.UTC(), day.To.UTC()).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return int(n), nil
}

func (db *DB) UpdateTask(ctx context.Context, t models.Task) (models.Task, error) {
	row := fromTask(t)
	res := db.conn.WithContext(ctx).Model(&taskRow{}).Where("id = ?", t.ID).Updates(map[string]any{
		"date":      row.Date,
		"task_name": row.TaskName,
		"plan":      row.Plan,
		"result":    row.Result,
	})
	if res.Error != nil {
		return models.Task{}, fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.Task{}, core.ErrNotFound
	}
	return db.GetTask(ctx, t.ID)
}

func (db *DB) DeleteTask(ctx context.Context, id int64) error {
	res := db.conn.WithContext(ctx).Delete(&taskRow{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Reports

func (db *DB) FindReport(ctx context.Context, userID int64, day core.DayRange) (models.DailyReport, error) {
	var row reportRow
	err := db.conn.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, day.From.UTC(), day.To.UTC()).
		Order("id ASC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DailyReport{}, core.ErrNotFound
		}
		return models.DailyReport{}, fmt.Errorf("find report: %w", err)
	}
	return row.model(), nil
}

func (db *DB) CreateReport(ctx context.Context, r models.DailyReport) (models.DailyReport, error) {
	row := fromReport(r)
	if err := db.conn.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return models.DailyReport{}, core.ErrReportConflict
		}
		return models.DailyReport{}, fmt.Errorf("insert report: %w", err)
	}
	return row.model(), nil
}

func (db *DB) MarkReportSubmitted(ctx context.Context, id int64, at time.Time) (models.DailyReport, error) {
	res := db.conn.WithContext(ctx).Model(&reportRow{}).Where("id = ?", id).Updates(map[string]any{
		"submitted":    true,
		"submitted_at": at.UTC(),
	})
	if res.Error != nil {
		return models.DailyReport{}, fmt.Errorf("mark report submitted: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.DailyReport{}, core.ErrNotFound
	}

	var row reportRow
	if err := db.conn.WithContext(ctx).First(&row, id).Error; err != nil {
		return models.DailyReport{}, fmt.Errorf("reload report: %w", err)
	}
	return row.model(), nil
}

func (db *DB) DeleteReport(ctx context.Context, id int64) error {
	res := db.conn.WithContext(ctx).Delete(&reportRow{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete report: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (db *DB) ListReports(ctx context.Context, f core.ReportFilter) ([]models.ReportEntry, error) {
	q := db.conn.WithContext(ctx)
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Day != nil {
		q = q.Where("date >= ? AND date < ?", f.Day.From.UTC(), f.Day.To.UTC())
	}
	switch f.Order {
	case core.OrderByDate:
		q = q.Order("date DESC").Order("id DESC")
	default:
		// NULLs sort first ascending, so last here
		q = q.Order("submitted_at DESC").Order("id DESC")
	}

	var rows []reportRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	if len(rows) == 0 {
		return []models.ReportEntry{}, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	var users []userRow
	if err := db.conn.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list report users: %w", err)
	}
	byID := make(map[int64]models.UserSummary, len(users))
	for _, u := range users {
		byID[u.ID] = u.model().Summary()
	}

	out := make([]models.ReportEntry, 0, len(rows))
	for _, r := range rows {
		entry := models.ReportEntry{DailyReport: r.model()}
		if u, ok := byID[r.UserID]; ok {
			entry.User = &u
		}
		out = append(out, entry)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
