package models

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

type Position string

const (
	PositionProjectManager Position = "project_manager"
	PositionMediaBuyer     Position = "media_buyer"
	PositionGraphicDesign  Position = "graphic_design"
)

func (p Position) Valid() bool {
	switch p {
	case PositionProjectManager, PositionMediaBuyer, PositionGraphicDesign:
		return true
	}
	return false
}

type User struct {
	ID        int64     `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Password  string    `json:"-" db:"password"`
	Role      Role      `json:"role" db:"role"`
	Position  *Position `json:"position" db:"position"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// UserSummary is the identity attached to a report in the admin listing.
type UserSummary struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Position *Position `json:"position"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Position: u.Position}
}

type Task struct {
	ID       int64     `json:"id" db:"id"`
	Date     time.Time `json:"date" db:"date"`
	TaskName string    `json:"taskName" db:"task_name"`
	Plan     string    `json:"plan" db:"plan"`
	Result   string    `json:"result" db:"result"`
	UserID   int64     `json:"userId" db:"user_id"`
}

type DailyReport struct {
	ID          int64      `json:"id" db:"id"`
	Date        time.Time  `json:"date" db:"date"`
	UserID      int64      `json:"userId" db:"user_id"`
	Submitted   bool       `json:"submitted" db:"submitted"`
	SubmittedAt *time.Time `json:"submittedAt" db:"submitted_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}

// ReportEntry is one row of the admin report listing: the report with
// its author and that day's tasks. Staff listings send the bare
// DailyReport instead.
type ReportEntry struct {
	DailyReport
	User  *UserSummary `json:"user,omitempty"`
	Tasks []Task       `json:"tasks"`
}
