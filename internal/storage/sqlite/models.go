package sqlite

import (
	"time"

	"task_portal/internal/models"
)

// Times are written in UTC so that SQLite's text comparison orders them.

type userRow struct {
	ID        int64     `gorm:"primaryKey"`
	Username  string    `gorm:"not null;uniqueIndex"`
	Password  string    `gorm:"not null"`
	Role      string    `gorm:"not null;index"`
	Position  *string
	CreatedAt time.Time `gorm:"not null"`
}

func (userRow) TableName() string { return "users" }

type taskRow struct {
	ID       int64     `gorm:"primaryKey"`
	Date     time.Time `gorm:"not null;index:idx_task_user_date,priority:2"`
	TaskName string    `gorm:"not null"`
	Plan     string    `gorm:"not null"`
	Result   string    `gorm:"not null"`
	UserID   int64     `gorm:"not null;index:idx_task_user_date,priority:1"`
}

func (taskRow) TableName() string { return "tasks" }

type reportRow struct {
	ID          int64     `gorm:"primaryKey"`
	Date        time.Time `gorm:"not null;uniqueIndex:idx_report_date_user,priority:1"`
	UserID      int64     `gorm:"not null;uniqueIndex:idx_report_date_user,priority:2"`
	Submitted   bool      `gorm:"not null"`
	SubmittedAt *time.Time
	CreatedAt   time.Time `gorm:"not null"`
}

func (reportRow) TableName() string { return "daily_reports" }

func fromUser(u models.User) userRow {
	row := userRow{
		ID:        u.ID,
		Username:  u.Username,
		Password:  u.Password,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.UTC(),
	}
	if u.Position != nil {
		p := string(*u.Position)
		row.Position = &p
	}
	return row
}

func (r userRow) model() models.User {
	u := models.User{
		ID:        r.ID,
		Username:  r.Username,
		Password:  r.Password,
		Role:      models.Role(r.Role),
		CreatedAt: r.CreatedAt,
	}
	if r.Position != nil {
		p := models.Position(*r.Position)
		u.Position = &p
	}
	return u
}

func fromTask(t models.Task) taskRow {
	return taskRow{
		ID:       t.ID,
		Date:     t.Date.UTC(),
		TaskName: t.TaskName,
		Plan:     t.Plan,
		Result:   t.Result,
		UserID:   t.UserID,
	}
}

func (r taskRow) model() models.Task {
	return models.Task{
		ID:       r.ID,
		Date:     r.Date,
		TaskName: r.TaskName,
		Plan:     r.Plan,
		Result:   r.Result,
		UserID:   r.UserID,
	}
}

func fromReport(d models.DailyReport) reportRow {
	row := reportRow{
		ID:        d.ID,
		Date:      d.Date.UTC(),
		UserID:    d.UserID,
		Submitted: d.Submitted,
		CreatedAt: d.CreatedAt.UTC(),
	}
	if d.SubmittedAt != nil {
		at := d.SubmittedAt.UTC()
		row.SubmittedAt = &at
	}
	return row
}

func (r reportRow) model() models.DailyReport {
	return models.DailyReport{
		ID:          r.ID,
		Date:        r.Date,
		UserID:      r.UserID,
		Submitted:   r.Submitted,
		SubmittedAt: r.SubmittedAt,
		CreatedAt:   r.CreatedAt,
	}
}
