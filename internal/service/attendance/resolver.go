package attendance

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/utils"
	"github.com/shopspring/decimal"
)

// Resolver derives the four-slot attendance of one employee on one date from
// punch logs, the applicable schedule and optional leave/overtime records.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	loc         *time.Location
	gracePeriod int
	workers     int
	now         func() time.Time
}

func NewResolver(loc *time.Location, gracePeriodMinutes int, workers int) *Resolver {
	if loc == nil {
		loc = utils.ReferenceZone(8 * time.Hour)
	}
	if gracePeriodMinutes < 0 {
		gracePeriodMinutes = attendance.DefaultGracePeriodMinutes
	}
	if workers <= 0 {
		workers = 1
	}
	return &Resolver{
		loc:         loc,
		gracePeriod: gracePeriodMinutes,
		workers:     workers,
		now:         time.Now,
	}
}

// WithClock returns a copy of the resolver that reads "today" from now.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	c := *r
	c.now = now
	return &c
}

// Location is the reference zone every timestamp is normalised to.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// shiftBounds is a schedule placed on a concrete date.
type shiftBounds struct {
	clockIn  time.Time
	clockOut time.Time
	outClock utils.Clock
	breakMin int
}

// Resolve reconciles a single (employee, date) pair.
func (r *Resolver) Resolve(in attendance.DailyInput) (attendance.DailyAttendanceResult, error) {
	day, err := utils.ParseDate(in.Date, r.loc)
	if err != nil {
		return attendance.DailyAttendanceResult{}, fmt.Errorf("%w: %q", attendance.ErrInvalidDate, in.Date)
	}
	if in.RatePerMinute.IsNegative() {
		return attendance.DailyAttendanceResult{}, attendance.ErrInvalidRatePerMinute
	}

	logs, err := r.normaliseLogs(in.Logs)
	if err != nil {
		return attendance.DailyAttendanceResult{}, err
	}
	if err := r.validateOverrides(in.Leave, in.Overtime); err != nil {
		return attendance.DailyAttendanceResult{}, err
	}

	result := attendance.DailyAttendanceResult{
		Date:       day.Format(utils.DateLayout),
		EmployeeID: in.EmployeeID,
	}

	schedule := SelectSchedule(in.Schedules, day)
	if schedule == nil || schedule.ClockIn == nil || schedule.ClockOut == nil {
		return withSlots(result, attendance.UniformSlots(attendance.StatusUnscheduled)), nil
	}

	bounds, err := r.boundsFor(*schedule, day)
	if err != nil {
		return attendance.DailyAttendanceResult{}, err
	}

	result.ClockIn = schedule.ClockIn
	result.ClockOut = schedule.ClockOut

	if !worksOn(*schedule, day) {
		return withSlots(result, attendance.UniformSlots(attendance.StatusNoWork)), nil
	}

	slots := r.classify(bounds, logs)
	slots = FillGaps(slots)

	return r.aggregate(result, slots, bounds, day, in.RatePerMinute, in.Leave, in.Overtime), nil
}

func withSlots(result attendance.DailyAttendanceResult, s attendance.Slots) attendance.DailyAttendanceResult {
	result.AmIn = s.AmIn
	result.AmOut = s.AmOut
	result.PmIn = s.PmIn
	result.PmOut = s.PmOut
	result.PaidShift = decimal.Zero
	result.DeductedUndertime = decimal.Zero
	result.PaidLeave = decimal.Zero
	result.PaidOvertime = decimal.Zero
	return result
}

// normaliseLogs validates every punch, moves it to the reference zone and
// returns the logs in ascending timestamp order. The input is not modified.
func (r *Resolver) normaliseLogs(logs []attendance.AttendanceLog) ([]attendance.AttendanceLog, error) {
	out := make([]attendance.AttendanceLog, 0, len(logs))
	for _, log := range logs {
		if err := validateLog(log); err != nil {
			return nil, err
		}
		log.Timestamp = log.Timestamp.In(r.loc)
		out = append(out, log)
	}

	slices.SortStableFunc(out, func(a, b attendance.AttendanceLog) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out, nil
}

func validateLog(log attendance.AttendanceLog) error {
	if log.Timestamp.IsZero() {
		return attendance.NewMalformedLogError(log.ID, errors.New("missing timestamp"))
	}
	if !log.Punch.Valid() {
		return attendance.NewMalformedLogError(log.ID, fmt.Errorf("unknown punch code %d", log.Punch))
	}
	return nil
}

func (r *Resolver) validateOverrides(leave *attendance.LeaveOverride, overtime *attendance.OvertimeOverride) error {
	if leave != nil {
		if leave.StartTimestamp.IsZero() || leave.EndTimestamp.IsZero() {
			return attendance.NewMalformedLeaveError(leave.ID, errors.New("missing start or end timestamp"))
		}
	}
	if overtime != nil && overtime.RequestedMins < 0 {
		return attendance.NewMalformedOvertimeError(overtime.ID, fmt.Errorf("negative requested_mins %d", overtime.RequestedMins))
	}
	return nil
}

// boundsFor places the schedule's clock-in/out on day. A clock-out that is not
// after the clock-in belongs to the following day.
func (r *Resolver) boundsFor(s attendance.WorkSchedule, day time.Time) (shiftBounds, error) {
	in, err := utils.ParseClock(*s.ClockIn)
	if err != nil {
		return shiftBounds{}, attendance.NewMalformedScheduleError(s.ID, fmt.Errorf("clock_in: %w", err))
	}
	out, err := utils.ParseClock(*s.ClockOut)
	if err != nil {
		return shiftBounds{}, attendance.NewMalformedScheduleError(s.ID, fmt.Errorf("clock_out: %w", err))
	}

	breakMin := 0
	if s.BreakMin != nil {
		breakMin = *s.BreakMin
	}
	if breakMin < 0 {
		return shiftBounds{}, attendance.NewMalformedScheduleError(s.ID, fmt.Errorf("negative break_min %d", breakMin))
	}

	clockIn := in.On(day)
	clockOut := out.On(day)
	if !in.Before(out) {
		clockOut = clockOut.AddDate(0, 0, 1)
	}

	return shiftBounds{
		clockIn:  clockIn,
		clockOut: clockOut,
		outClock: out,
		breakMin: breakMin,
	}, nil
}

func worksOn(s attendance.WorkSchedule, day time.Time) bool {
	abbrev := utils.WeekdayAbbrev(day)
	for _, d := range s.DaysJSON {
		if attendance.NormaliseWeekday(d) == abbrev {
			return true
		}
	}
	return false
}

func (r *Resolver) isToday(t time.Time) bool {
	return utils.DateOnly(t, r.loc).Equal(utils.DateOnly(r.now(), r.loc))
}

func strPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}
