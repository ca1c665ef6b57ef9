package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/utils"
	"github.com/shopspring/decimal"
)

// aggregate computes the paid-time figures from the completed slots, then
// applies the leave and overtime overrides. Leave only relabels slots and adds
// leave minutes; it does not change the punch-derived shift math.
func (r *Resolver) aggregate(
	result attendance.DailyAttendanceResult,
	s attendance.Slots,
	b shiftBounds,
	day time.Time,
	rate decimal.Decimal,
	leave *attendance.LeaveOverride,
	overtime *attendance.OvertimeOverride,
) attendance.DailyAttendanceResult {
	shiftLength := workedMinutes(s)
	factShiftLength := utils.MinutesBetween(b.clockIn, b.clockOut) - b.breakMin

	result.RenderedShift = min(shiftLength, factShiftLength)
	result.RenderedUndertime = max(0, factShiftLength-shiftLength)
	if s.PmOut.Filled() {
		result.RenderedOvertime = utils.MinutesBetween(b.clockOut, *s.PmOut.Time)
	}

	if leave != nil {
		s, result.RenderedLeave = r.applyLeave(s, b, day, *leave)
	}

	result.AmIn = s.AmIn
	result.AmOut = s.AmOut
	result.PmIn = s.PmIn
	result.PmOut = s.PmOut

	result.PaidShift = pay(result.RenderedShift, rate)
	result.DeductedUndertime = pay(result.RenderedUndertime, rate)
	result.PaidLeave = pay(result.RenderedLeave, rate)
	result.PaidOvertime = decimal.Zero
	if overtime != nil {
		result.PaidOvertime = pay(overtime.RequestedMins, rate)
	}

	return result
}

// workedMinutes is the punch-derived shift length. An AM-in followed only by a
// PM-out counts as one continuous shift with no lunch break.
func workedMinutes(s attendance.Slots) int {
	if s.AmIn.Filled() && !s.AmOut.Filled() && !s.PmIn.Filled() && s.PmOut.Filled() {
		return utils.MinutesBetween(*s.AmIn.Time, *s.PmOut.Time)
	}

	morning, afternoon := 0, 0
	if s.AmIn.Filled() && s.AmOut.Filled() {
		morning = utils.MinutesBetween(*s.AmIn.Time, *s.AmOut.Time)
	}
	if s.PmIn.Filled() && s.PmOut.Filled() {
		afternoon = utils.MinutesBetween(*s.PmIn.Time, *s.PmOut.Time)
	}
	return morning + afternoon
}

// applyLeave relabels the slots the leave covers. A leave crossing a day
// boundary is clipped to its overlap with the scheduled shift, so multi-day
// leave yields one day's worth of minutes per day. No overlap leaves the
// slots untouched.
func (r *Resolver) applyLeave(s attendance.Slots, b shiftBounds, day time.Time, leave attendance.LeaveOverride) (attendance.Slots, int) {
	start := leave.StartTimestamp.In(r.loc)
	end := leave.EndTimestamp.In(r.loc)

	if start.Before(day) || !end.Before(day.AddDate(0, 0, 1)) {
		if start.Before(b.clockIn) {
			start = b.clockIn
		}
		if end.After(b.clockOut) {
			end = b.clockOut
		}
		if !start.Before(end) {
			return s, 0
		}
	}

	leaveIn := attendance.SlotStatus{ID: strPtr(leave.ID), Time: timePtr(start), Status: attendance.StatusOnLeave}
	leaveOut := attendance.SlotStatus{ID: strPtr(leave.ID), Time: timePtr(end), Status: attendance.StatusOnLeave}

	if start.Hour() < 12 {
		s.AmIn = leaveIn
	} else {
		s.PmIn = leaveIn
	}
	if end.Hour() < 13 {
		s.AmOut = leaveOut
	} else {
		s.PmOut = leaveOut
	}

	return s, abs(utils.MinutesBetween(start, end))
}

func pay(minutes int, rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(int64(minutes)))
}
