package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
)

// SelectSchedule picks the schedule applicable on date.
//
// A date-ranged schedule whose [start_date, end_date] contains the date wins.
// Otherwise the first open-ended schedule (in input order) that started on or
// before the date is used. Repositories return schedules newest first, so the
// first open-ended match is the most recent one. Returns nil when nothing
// applies. Comparison is by calendar date only.
func SelectSchedule(schedules []attendance.WorkSchedule, date time.Time) *attendance.WorkSchedule {
	d := calendarDay(date)

	for i := range schedules {
		s := &schedules[i]
		if s.EndDate == nil {
			continue
		}
		if !d.Before(calendarDay(s.StartDate)) && !d.After(calendarDay(*s.EndDate)) {
			return s
		}
	}

	for i := range schedules {
		s := &schedules[i]
		if s.EndDate != nil {
			continue
		}
		if !d.Before(calendarDay(s.StartDate)) {
			return s
		}
	}

	return nil
}

// calendarDay strips time and zone, keeping the wall-clock date of t.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
