package web

type loginIn struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type createStaffIn struct {
	Username string  `json:"username" validate:"required,max=64"`
	Password string  `json:"password" validate:"required,max=72"`
	Position *string `json:"position,omitempty"`
}

// updateStaffIn fields are optional; an empty position clears it.
type updateStaffIn struct {
	Username *string `json:"username,omitempty" validate:"omitempty,max=64"`
	Password *string `json:"password,omitempty" validate:"omitempty,max=72"`
	Position *string `json:"position,omitempty"`
}

type createTaskIn struct {
	Date     *string `json:"date,omitempty"`
	TaskName string  `json:"taskName" validate:"required,max=255"`
	Plan     string  `json:"plan"`
	Result   string  `json:"result"`
}

type updateTaskIn struct {
	Date     *string `json:"date,omitempty"`
	TaskName *string `json:"taskName,omitempty" validate:"omitempty,max=255"`
	Plan     *string `json:"plan,omitempty"`
	Result   *string `json:"result,omitempty"`
}

type submitReportIn struct {
	Date string `json:"date" validate:"required"`
}
