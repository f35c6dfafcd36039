package auth

import "errors"

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrUnauthorized    = errors.New("unauthorized")
)

// Action names a capability checked by Authorize.
type Action int

const (
	// ManageStaff covers listing, creating, updating and deleting staff accounts.
	ManageStaff Action = iota + 1
	// ReviewReports covers reading every user's reports, pending lists and exports.
	ReviewReports
	// ReadAllTasks lists tasks without restricting them to one owner.
	ReadAllTasks
	ReadTasks
	WriteTask
	ReadReports
	SubmitReport
)

func (a Action) String() string {
	switch a {
	case ManageStaff:
		return "manage_staff"
	case ReviewReports:
		return "review_reports"
	case ReadAllTasks:
		return "read_all_tasks"
	case ReadTasks:
		return "read_tasks"
	case WriteTask:
		return "write_task"
	case ReadReports:
		return "read_reports"
	case SubmitReport:
		return "submit_report"
	}
	return "unknown"
}

// Resource describes what an action touches. OwnerID is zero when the
// action is not tied to a particular user's data.
type Resource struct {
	OwnerID int64
}

// Authorize is the one place where roles turn into allow/deny.
// A nil session is always ErrUnauthenticated. Admins may do anything.
// Staff may act on their own data only and never on admin-only actions.
func Authorize(s *Session, action Action, res Resource) error {
	if s == nil {
		return ErrUnauthenticated
	}
	if s.IsAdmin() {
		return nil
	}

	switch action {
	case ManageStaff, ReviewReports, ReadAllTasks:
		return ErrUnauthorized
	case ReadTasks, WriteTask, ReadReports, SubmitReport:
		if res.OwnerID != 0 && res.OwnerID != s.UserID {
			return ErrUnauthorized
		}
		return nil
	}
	return ErrUnauthorized
}

// Can reports whether Authorize would allow the action.
func Can(s *Session, action Action, res Resource) bool {
	return Authorize(s, action, res) == nil
}
