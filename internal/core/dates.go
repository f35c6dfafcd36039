package core

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// submissionGrace is how long after the end of the report day a report
// may still be submitted.
const submissionGrace = 24 * time.Hour

// ParseDate reads a calendar day as YYYY-MM-DD in the portal time zone.
// RFC 3339 timestamps are accepted and truncated to their day.
func (s *Service) ParseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", ErrInvalidArgs)
	}
	if t, err := time.ParseInLocation(DateLayout, v, s.loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return s.dayOf(t).From, nil
	}
	return time.Time{}, fmt.Errorf("%w: date must be formatted as YYYY-MM-DD", ErrInvalidArgs)
}

func (s *Service) dayOf(t time.Time) DayRange {
	lt := t.In(s.loc)
	y, m, d := lt.Date()
	return DayRange{
		From: time.Date(y, m, d, 0, 0, 0, 0, s.loc),
		To:   time.Date(y, m, d+1, 0, 0, 0, 0, s.loc),
	}
}

func (s *Service) today() DayRange {
	return s.dayOf(s.clock.Now())
}

// noonOf is where a report's date is pinned so that it groups under the
// same calendar day whatever the reader's offset.
func (s *Service) noonOf(day DayRange) time.Time {
	y, m, d := day.From.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, s.loc)
}

// submissionDeadline is the last instant a report for day is accepted:
// the end of the day plus the grace period.
func submissionDeadline(day DayRange) time.Time {
	endOfDay := day.To.Add(-time.Millisecond)
	return endOfDay.Add(submissionGrace)
}
