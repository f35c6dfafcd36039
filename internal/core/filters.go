package core

import "time"

// DayRange is the half-open interval [From, To) covering one calendar day.
type DayRange struct {
	From time.Time
	To   time.Time
}

func (d DayRange) Contains(t time.Time) bool {
	return !t.Before(d.From) && t.Before(d.To)
}

type TaskFilter struct {
	UserID *int64
	Day    *DayRange
}

type ReportOrder int

const (
	// OrderBySubmittedAt lists the most recent submission first.
	OrderBySubmittedAt ReportOrder = iota
	// OrderByDate lists the most recent report day first.
	OrderByDate
)

type ReportFilter struct {
	UserID *int64
	Day    *DayRange
	Order  ReportOrder
}
