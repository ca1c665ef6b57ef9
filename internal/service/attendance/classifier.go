package attendance

import (
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/utils"
)

// halfDayHours splits punches into the morning or afternoon half by their
// hour distance from the scheduled boundary.
const halfDayHours = 4

// lunchReturnHour is the expected PM-in hour when no AM-out was punched.
const lunchReturnHour = 13

// classify assigns each log (already sorted ascending) to a slot. Slots with
// no punch are left empty for FillGaps. For in-slots the first punch is kept,
// for out-slots the last one.
func (r *Resolver) classify(b shiftBounds, logs []attendance.AttendanceLog) attendance.Slots {
	var s attendance.Slots

	for _, log := range logs {
		ts := log.Timestamp
		slot := attendance.SlotStatus{ID: strPtr(log.ID), Time: timePtr(ts)}

		switch log.Punch {
		case attendance.PunchIn:
			if abs(ts.Hour()-b.clockIn.Hour()) < halfDayHours {
				if s.AmIn.Filled() {
					continue
				}
				slot.Status = attendance.StatusOntime
				if utils.MinutesBetween(b.clockIn, ts) > r.gracePeriod {
					slot.Status = attendance.StatusLate
				}
				s.AmIn = slot
				continue
			}

			if s.PmIn.Filled() {
				continue
			}
			slot.Status = r.pmInStatus(s.AmOut, b, log)
			s.PmIn = slot

		case attendance.PunchOut:
			if b.clockOut.Hour()-ts.Hour() > halfDayHours {
				slot.Status = attendance.StatusLunch
				s.AmOut = slot
				continue
			}

			scheduledOut := b.outClock.On(ts)
			diff := utils.MinutesBetween(scheduledOut, ts)
			switch {
			case diff > r.gracePeriod:
				slot.Status = attendance.StatusOvertime
			case diff < -r.gracePeriod:
				slot.Status = attendance.StatusEarlyOut
			default:
				slot.Status = attendance.StatusOntime
			}
			s.PmOut = slot
		}
	}

	// Someone who punched out for lunch on a past day and never came back
	// left early. Today they may still return.
	if s.AmOut.Filled() && s.AmOut.Status == attendance.StatusLunch &&
		!s.PmIn.Filled() && !r.isToday(*s.AmOut.Time) {
		s.AmOut.Status = attendance.StatusEarlyOut
	}

	return s
}

func (r *Resolver) pmInStatus(amOut attendance.SlotStatus, b shiftBounds, log attendance.AttendanceLog) attendance.Status {
	ts := log.Timestamp
	if amOut.Filled() {
		if utils.MinutesBetween(*amOut.Time, ts) > b.breakMin {
			return attendance.StatusLate
		}
		return attendance.StatusOntime
	}

	if ts.Hour() == lunchReturnHour && ts.Minute() <= r.gracePeriod {
		return attendance.StatusOntime
	}
	return attendance.StatusLate
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
